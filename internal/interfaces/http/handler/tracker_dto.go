package handler

// ClickResponse carries the recorded click and destination
// @Description Click recorded for a referral code
type ClickResponse struct {
	ClickID      string `json:"click_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	MemberID     string `json:"member_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	ReferralLink string `json:"referral_link" example:"https://worldcoin.org/join/alice"`
}

// RecordVisitRequest counts a landing page view
// @Description Page view payload; the IP is taken from the connection
type RecordVisitRequest struct {
	Page string `json:"page,omitempty" example:"/"`
}
