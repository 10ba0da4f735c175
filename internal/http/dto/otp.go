package dto

type SendCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required,e164"`
	// Message must contain a {{code}} placeholder the generated code is
	// substituted into.
	Message string `json:"message" binding:"required,contains={{code}}"`
}

type SendCodeResponse struct {
	AuthenticationID string `json:"authenticationId"`
}

type ValidateCodeRequest struct {
	AuthenticationID string `json:"authenticationId" binding:"required"`
	Code             string `json:"code" binding:"required"`
}
