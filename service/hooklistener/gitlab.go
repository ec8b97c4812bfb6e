package hooklistener

// GitlabWebhookPayload is part of the payload GitLab sends us after a pipeline event happened
type GitlabWebhookPayload struct {
	ObjectKind       string `json:"object_kind"`
	ObjectAttributes struct {
		Ref    string `json:"ref"`
		Status string `json:"status"`
	} `json:"object_attributes"`
}

// IsGitlab checks if the payload was sent by GitLab at all
func (p GitlabWebhookPayload) IsGitlab() bool {
	return p.ObjectKind != ""
}

// IsActionable checks if the webhook is actionable for us, we only reload after a successful pipeline on ref
func (p GitlabWebhookPayload) IsActionable(ref string) bool {
	if p.ObjectKind == "pipeline" && p.ObjectAttributes.Ref == ref && p.ObjectAttributes.Status == "success" {
		return true
	}
	return false
}
