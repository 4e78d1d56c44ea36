package handler

// RequestCertificateResponse carries the certificate status after the
// request. Regenerated is set only when a regeneration was attempted.
type RequestCertificateResponse struct {
	AddStatus   string `json:"add_status"`
	Regenerated *bool  `json:"regenerated,omitempty"`
}
