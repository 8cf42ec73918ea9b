package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Role     string `json:"role" binding:"required,oneof=student merchant admin"`
	// StudentID for students; MerchantCategory (e.g. "cafe") for merchants.
	StudentID        string `json:"student_id,omitempty" binding:"omitempty,safe_id,max=20"`
	MerchantCategory string `json:"merchant_category,omitempty" binding:"omitempty,safe_id,max=20"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token      string `json:"token"`
	Expiry     int64  `json:"expiry"` // Unix timestamp
	Role       string `json:"role"`
	BusinessID string `json:"business_id,omitempty"`
}

// AccountResponse is the directory view of an account.
type AccountResponse struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	BusinessID  string  `json:"business_id,omitempty"`
	Status      string  `json:"status"`
	BlockReason *string `json:"block_reason,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// IssueTokenRequest is the request body for creating a payment token.
type IssueTokenRequest struct {
	MerchantID string `json:"merchant_id" binding:"required,safe_id,max=30"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

// IssueTokenResponse carries the signed QR payload back to the student app.
type IssueTokenResponse struct {
	TransactionID string `json:"transaction_id"`
	QRPayload     string `json:"qr_payload"`
	MerchantID    string `json:"merchant_id"`
	Amount        int64  `json:"amount"`
	IssuedAt      string `json:"issued_at"`
	ExpiresAt     string `json:"expires_at"`
}

// RedeemRequest is the request body for merchant-side token redemption.
type RedeemRequest struct {
	Token string `json:"token" binding:"required"`
}

// RechargeRequest is the request body for a wallet recharge.
type RechargeRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TransactionResponse is the response body for ledger entries.
type TransactionResponse struct {
	ID                  string   `json:"id"`
	Type                string   `json:"type"`
	Amount              int64    `json:"amount"`
	StudentID           string   `json:"student_id"`
	MerchantID          string   `json:"merchant_id"`
	Status              string   `json:"status"`
	RiskScore           int      `json:"risk_score"`
	RiskFlags           []string `json:"risk_flags"`
	ReviewStatus        string   `json:"review_status"`
	ParentTransactionID *string  `json:"parent_transaction_id,omitempty"`
	ReversalReason      *string  `json:"reversal_reason,omitempty"`
	CreatedAt           string   `json:"created_at"`
}

// WalletBalanceResponse is the response for a balance query.
type WalletBalanceResponse struct {
	Balance int64 `json:"balance"`
}

// BlockRequest is the request body for blocking an account.
type BlockRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReverseRequest is the request body for reversing a transaction.
type ReverseRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AdminActionResponse is one entry of the audit log.
type AdminActionResponse struct {
	ID                  string  `json:"id"`
	AdminEmail          string  `json:"admin_email"`
	Action              string  `json:"action"`
	TargetEmail         *string `json:"target_email,omitempty"`
	TargetTransactionID *string `json:"target_transaction_id,omitempty"`
	Reason              string  `json:"reason"`
	CreatedAt           string  `json:"created_at"`
}
