package handler

import (
	"time"

	"github.com/gym-coin-ledger/internal/coin_gateway/service"
	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/coin"
	"github.com/gym-coin-ledger/internal/domain/visit"
	"github.com/shopspring/decimal"
)

// PurchaseRequest buys coins for a member
type PurchaseRequest struct {
	MemberID string          `json:"memberId" binding:"required,uuid"`
	Coins    int64           `json:"coins"`
	Amount   decimal.Decimal `json:"amount"`
}

// RedeemRequest identifies the member and venue either directly or by the
// payloads of the two scanned codes
type RedeemRequest struct {
	MemberID   string `json:"memberId" binding:"omitempty,uuid"`
	VenueID    string `json:"venueId" binding:"omitempty,uuid"`
	MemberCode string `json:"memberCode"`
	VenueCode  string `json:"venueCode"`
}

type PayoutRequest struct {
	VenueID string `json:"venueId" binding:"required,uuid"`
	Amount  int64  `json:"amount"`
}

type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

type AuditQuery struct {
	PaginationParams
	MemberID string `form:"memberId" binding:"omitempty,uuid"`
	VenueID  string `form:"venueId" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=COMPLETED FAILED"`
}

type PurchaseResponse struct {
	TransactionID string `json:"transactionId"`
	MemberID      string `json:"memberId"`
	Coins         int64  `json:"coins"`
	AmountCharged string `json:"amountCharged"`
	Balance       int64  `json:"balance"`
	OccurredAt    string `json:"occurredAt"`
}

type VisitResponse struct {
	VenueID   string `json:"venueId"`
	VenueName string `json:"venueName,omitempty"`
	VisitedAt string `json:"visitedAt"`
}

type RedemptionResponse struct {
	TransactionID      string          `json:"transactionId"`
	MemberID           string          `json:"memberId"`
	VenueID            string          `json:"venueId"`
	Coins              int64           `json:"coins"`
	MemberBalance      int64           `json:"memberBalance"`
	VenueBalance       int64           `json:"venueBalance"`
	RedemptionDay      string          `json:"redemptionDay"`
	RecentVenues       []VisitResponse `json:"recentVenues"`
	DistinctVenueCount int             `json:"distinctVenueCount"`
}

type PayoutResponse struct {
	TransactionID string `json:"transactionId"`
	VenueID       string `json:"venueId"`
	Coins         int64  `json:"coins"`
	VenueBalance  int64  `json:"venueBalance"`
	OccurredAt    string `json:"occurredAt"`
}

type PurchaseRecordResponse struct {
	TransactionID string `json:"transactionId"`
	Coins         int64  `json:"coins"`
	AmountCharged string `json:"amountCharged"`
	OccurredAt    string `json:"occurredAt"`
}

type TransactionResponse struct {
	TransactionID string `json:"transactionId"`
	MemberID      string `json:"memberId,omitempty"`
	VenueID       string `json:"venueId,omitempty"`
	VenueName     string `json:"venueName,omitempty"`
	Kind          string `json:"kind"`
	Coins         int64  `json:"coins"`
	OccurredAt    string `json:"occurredAt"`
}

type MemberStatementResponse struct {
	MemberID           string                   `json:"memberId"`
	DisplayName        string                   `json:"displayName"`
	Balance            int64                    `json:"balance"`
	Purchases          []PurchaseRecordResponse `json:"purchases"`
	Redemptions        []TransactionResponse    `json:"redemptions"`
	RecentVenues       []VisitResponse          `json:"recentVenues"`
	DistinctVenueCount int                      `json:"distinctVenueCount"`
}

type MonthlyTotalResponse struct {
	Month string `json:"month"`
	Coins int64  `json:"coins"`
}

type VenueStatementResponse struct {
	VenueID                 string                 `json:"venueId"`
	DisplayName             string                 `json:"displayName"`
	Balance                 int64                  `json:"balance"`
	CurrentMonthRedemptions int64                  `json:"currentMonthRedemptions"`
	Monthly                 []MonthlyTotalResponse `json:"monthly"`
	Redemptions             []TransactionResponse  `json:"redemptions"`
}

type VenueOverviewResponse struct {
	VenueID          string `json:"venueId"`
	DisplayName      string `json:"displayName,omitempty"`
	Balance          int64  `json:"balance"`
	MonthRedemptions int64  `json:"monthRedemptions"`
}

type OverviewResponse struct {
	CirculatingCoins int64                   `json:"circulatingCoins"`
	VenueHeldCoins   int64                   `json:"venueHeldCoins"`
	MonthStart       string                  `json:"monthStart"`
	Venues           []VenueOverviewResponse `json:"venues"`
}

type CodeResponse struct {
	Payload string `json:"payload"`
	Image   string `json:"image"`
}

type AuditEntryResponse struct {
	TransactionID string `json:"transactionId"`
	MemberID      string `json:"memberId,omitempty"`
	VenueID       string `json:"venueId,omitempty"`
	Kind          string `json:"kind"`
	Coins         int64  `json:"coins"`
	Status        string `json:"status"`
	FailureReason string `json:"failureReason,omitempty"`
	ClientIP      string `json:"clientIp,omitempty"`
	Device        string `json:"device,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
	OccurredAt    string `json:"occurredAt"`
}

type VenueReconciliationResponse struct {
	VenueID      string `json:"venueId"`
	LedgerCoins  int64  `json:"ledgerCoins"`
	AuditedCoins int64  `json:"auditedCoins"`
	Difference   int64  `json:"difference"`
}

type ReconciliationResponse struct {
	From       string                        `json:"from"`
	To         string                        `json:"to"`
	Mismatches int                           `json:"mismatches"`
	Venues     []VenueReconciliationResponse `json:"venues"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapVisits(history *visit.History, names map[string]string) ([]VisitResponse, int) {
	visits := make([]VisitResponse, 0)
	if history == nil {
		return visits, 0
	}
	for _, e := range history.Entries {
		visits = append(visits, VisitResponse{
			VenueID:   e.VenueID.String(),
			VenueName: names[e.VenueID.String()],
			VisitedAt: formatTime(e.VisitedAt),
		})
	}
	return visits, history.DistinctVenueCount
}

func mapTransaction(t *coin.Transaction, names map[string]string) TransactionResponse {
	response := TransactionResponse{
		TransactionID: t.ID.String(),
		Kind:          string(t.Kind),
		Coins:         t.Coins,
		OccurredAt:    formatTime(t.OccurredAt),
	}
	if t.MemberID != nil {
		response.MemberID = t.MemberID.String()
	}
	if t.VenueID != nil {
		response.VenueID = t.VenueID.String()
		response.VenueName = names[response.VenueID]
	}
	return response
}

func mapTransactions(transactions []*coin.Transaction, names map[string]string) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, mapTransaction(t, names))
	}
	return responses
}

func mapPurchaseResult(r *service.PurchaseResult) PurchaseResponse {
	return PurchaseResponse{
		TransactionID: r.Transaction.ID.String(),
		MemberID:      r.Record.MemberID.String(),
		Coins:         r.Transaction.Coins,
		AmountCharged: r.Record.AmountCharged.StringFixed(2),
		Balance:       r.Balance,
		OccurredAt:    formatTime(r.Transaction.OccurredAt),
	}
}

func mapRedemptionResult(r *service.RedemptionResult) RedemptionResponse {
	visits, distinct := mapVisits(r.History, nil)
	response := RedemptionResponse{
		TransactionID:      r.Transaction.ID.String(),
		MemberID:           r.Transaction.MemberID.String(),
		VenueID:            r.Transaction.VenueID.String(),
		Coins:              r.Transaction.Coins,
		MemberBalance:      r.MemberBalance,
		VenueBalance:       r.VenueBalance,
		RecentVenues:       visits,
		DistinctVenueCount: distinct,
	}
	if r.Transaction.RedemptionDay != nil {
		response.RedemptionDay = r.Transaction.RedemptionDay.Format("2006-01-02")
	}
	return response
}

func mapMemberStatement(s *service.MemberStatement) MemberStatementResponse {
	names := make(map[string]string, len(s.VenueNames))
	for id, name := range s.VenueNames {
		names[id.String()] = name
	}

	purchases := make([]PurchaseRecordResponse, 0, len(s.Purchases))
	for _, p := range s.Purchases {
		purchases = append(purchases, PurchaseRecordResponse{
			TransactionID: p.TransactionID.String(),
			Coins:         p.Coins,
			AmountCharged: p.AmountCharged.StringFixed(2),
			OccurredAt:    formatTime(p.OccurredAt),
		})
	}

	visits, distinct := mapVisits(s.History, names)
	return MemberStatementResponse{
		MemberID:           s.MemberID.String(),
		DisplayName:        s.DisplayName,
		Balance:            s.Balance,
		Purchases:          purchases,
		Redemptions:        mapTransactions(s.Redemptions, names),
		RecentVenues:       visits,
		DistinctVenueCount: distinct,
	}
}

func mapVenueStatement(s *service.VenueStatement) VenueStatementResponse {
	monthly := make([]MonthlyTotalResponse, 0, len(s.Monthly))
	for _, m := range s.Monthly {
		monthly = append(monthly, MonthlyTotalResponse{Month: m.Month.Format("2006-01"), Coins: m.Coins})
	}
	return VenueStatementResponse{
		VenueID:                 s.VenueID.String(),
		DisplayName:             s.DisplayName,
		Balance:                 s.Balance,
		CurrentMonthRedemptions: s.CurrentMonth,
		Monthly:                 monthly,
		Redemptions:             mapTransactions(s.Redemptions, nil),
	}
}

func mapOverview(o *service.PlatformOverview) OverviewResponse {
	venues := make([]VenueOverviewResponse, 0, len(o.Venues))
	for _, v := range o.Venues {
		venues = append(venues, VenueOverviewResponse{
			VenueID:          v.VenueID.String(),
			DisplayName:      v.DisplayName,
			Balance:          v.Balance,
			MonthRedemptions: v.MonthRedemptions,
		})
	}
	return OverviewResponse{
		CirculatingCoins: o.CirculatingCoins,
		VenueHeldCoins:   o.VenueHeldCoins,
		MonthStart:       formatTime(o.MonthStart),
		Venues:           venues,
	}
}

func mapAuditEntries(entries []*audit.Entry) []AuditEntryResponse {
	responses := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, AuditEntryResponse{
			TransactionID: e.TransactionID,
			MemberID:      e.MemberID,
			VenueID:       e.VenueID,
			Kind:          string(e.Kind),
			Coins:         e.Coins,
			Status:        string(e.Status),
			FailureReason: e.FailureReason,
			ClientIP:      e.ClientIP,
			Device:        e.Device,
			CorrelationID: e.CorrelationID,
			OccurredAt:    formatTime(e.OccurredAt),
		})
	}
	return responses
}

func mapReconciliation(r *service.Reconciliation) ReconciliationResponse {
	venues := make([]VenueReconciliationResponse, 0, len(r.Venues))
	for _, v := range r.Venues {
		venues = append(venues, VenueReconciliationResponse{
			VenueID:      v.VenueID.String(),
			LedgerCoins:  v.LedgerCoins,
			AuditedCoins: v.AuditedCoins,
			Difference:   v.Difference(),
		})
	}
	return ReconciliationResponse{
		From:       formatTime(r.From),
		To:         formatTime(r.To),
		Mismatches: r.Mismatches,
		Venues:     venues,
	}
}
