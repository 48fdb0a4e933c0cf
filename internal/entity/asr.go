package entity

type ASRTranscribeResponse struct {
	Transcriptions string `json:"transcriptions"`
	Language       string `json:"language,omitempty"`
}
