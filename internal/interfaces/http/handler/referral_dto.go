package handler

// AssignmentResponse is the referral handed to a visitor
// @Description Assignment created or reused for the calling visitor
type AssignmentResponse struct {
	AssignmentID string `json:"assignment_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	MemberID     string `json:"member_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	MemberName   string `json:"member_name" example:"Alice"`
	ReferralCode string `json:"referral_code" example:"alice"`
	ReferralLink string `json:"referral_link" example:"https://worldcoin.org/join/alice"`
	Reused       bool   `json:"reused" example:"false"`
}

// CompleteAssignmentRequest attributes a conversion to an account
// @Description Optional account that completed the referred signup
type CompleteAssignmentRequest struct {
	AccountID string `json:"account_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440002"`
}

// CompleteAssignmentResponse reports the credit applied
// @Description Reward credited for the completed assignment
type CompleteAssignmentResponse struct {
	AssignmentID string  `json:"assignment_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	MemberID     string  `json:"member_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Reward       float64 `json:"reward" example:"50"`
	TotalEarned  float64 `json:"total_earned" example:"150"`
}

// RandomReferralResponse is an arbitrary eligible referral
// @Description Referral of a randomly chosen least-loaded member
type RandomReferralResponse struct {
	ClickID      string `json:"click_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	MemberID     string `json:"member_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	MemberName   string `json:"member_name" example:"Alice"`
	ReferralCode string `json:"referral_code" example:"alice"`
	ReferralLink string `json:"referral_link" example:"https://worldcoin.org/join/alice"`
}
