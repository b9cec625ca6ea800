package httpdto

type SendMessageRequest struct {
	ClientMsgID    string `json:"client_msg_id"`
	Content        string `json:"content"`
	AttachmentURL  string `json:"attachment_url"`
	AttachmentKind string `json:"attachment_kind"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

type SavedRequest struct {
	Saved bool `json:"saved"`
}
