package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cardex/models"
	"cardex/service"
	"github.com/go-chi/chi/v5"
)

// Wire shapes. Internal models carry db tags only; everything crossing
// the API boundary is mapped through these.

type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CardCount   int64  `json:"card_count"`
}

type cardResponse struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	SetName  string  `json:"set_name"`
	Rarity   *string `json:"rarity,omitempty"`
	Color    *string `json:"color,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type holdingResponse struct {
	cardResponse
	Quantity int64 `json:"quantity"`
}

type historyResponse struct {
	CardID         int64     `json:"card_id"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	ChangeAmount   int64     `json:"change_amount"`
	ChangeType     string    `json:"change_type"`
	RelatedID      *int64    `json:"related_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type completionResponse struct {
	SetName     string `json:"set_name"`
	TotalCards  int64  `json:"total_cards"`
	OwnedUnique int64  `json:"owned_unique"`
	Percent     int64  `json:"percent"`
}

type potentialResponse struct {
	WantFromThem []int64 `json:"want_from_them"`
	CanOffer     []int64 `json:"can_offer"`
	Requestable  []int64 `json:"requestable"`
}

type requestResponse struct {
	ID         int64      `json:"id"`
	FromUserID string     `json:"from_user_id"`
	ToUserID   string     `json:"to_user_id"`
	CardID     int64      `json:"card_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

type sessionResponse struct {
	ID                   int64      `json:"id"`
	RequestID            int64      `json:"request_id"`
	RequesterID          string     `json:"requester_id"`
	OwnerID              string     `json:"owner_id"`
	CardID               int64      `json:"card_id"`
	Status               string     `json:"status"`
	ConfirmedByRequester bool       `json:"confirmed_by_requester"`
	ConfirmedByOwner     bool       `json:"confirmed_by_owner"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

type pinResponse struct {
	CardID   int64 `json:"card_id"`
	Position int   `json:"position"`
}

func toCardResponse(card *models.Card) cardResponse {
	return cardResponse{
		ID:       card.ID,
		Code:     card.Code,
		Name:     card.Name,
		SetName:  card.SetName,
		Rarity:   card.Rarity,
		Color:    card.Color,
		ImageURL: card.ImageURL,
	}
}

func toRequestResponse(request *models.TradeRequest) requestResponse {
	return requestResponse{
		ID:         request.ID,
		FromUserID: request.FromUserID,
		ToUserID:   request.ToUserID,
		CardID:     request.CardID,
		Status:     string(request.Status),
		CreatedAt:  request.CreatedAt,
		DecidedAt:  request.DecidedAt,
	}
}

func toSessionResponse(session *models.TradeSession) sessionResponse {
	return sessionResponse{
		ID:                   session.ID,
		RequestID:            session.RequestID,
		RequesterID:          session.RequesterID,
		OwnerID:              session.OwnerID,
		CardID:               session.CardID,
		Status:               string(session.Status),
		ConfirmedByRequester: session.ConfirmedByRequester,
		ConfirmedByOwner:     session.ConfirmedByOwner,
		CompletedAt:          session.CompletedAt,
	}
}

// pathID parses an int64 path parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, service.ErrInvalidInput)
	}
	return id, nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]userResponse, 0, len(users))
	for _, user := range users {
		response = append(response, userResponse{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			CardCount:   user.CardCount,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetHoldings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	details, err := s.inventory.GetHoldingDetails(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]holdingResponse, 0, len(details))
	for _, detail := range details {
		response = append(response, holdingResponse{
			cardResponse: toCardResponse(&detail.Card),
			Quantity:     detail.Quantity,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid limit: %w", service.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	entries, err := s.inventory.GetHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]historyResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, historyResponse{
			CardID:         entry.CardID,
			QuantityBefore: entry.QuantityBefore,
			QuantityAfter:  entry.QuantityAfter,
			ChangeAmount:   entry.ChangeAmount,
			ChangeType:     string(entry.ChangeType),
			RelatedID:      entry.RelatedID,
			CreatedAt:      entry.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetCompletion(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	completion, err := s.users.GetSetCompletion(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]completionResponse, 0, len(completion))
	for _, set := range completion {
		response = append(response, completionResponse{
			SetName:     set.SetName,
			TotalCards:  set.TotalCards,
			OwnedUnique: set.OwnedUnique,
			Percent:     set.Percent(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetPotential(w http.ResponseWriter, r *http.Request) {
	otherUserID := chi.URLParam(r, "userID")

	detail, err := s.matching.ComputeTradePotential(r.Context(), callerID(r.Context()), otherUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, potentialResponse{
		WantFromThem: detail.WantFromThem,
		CanOffer:     detail.CanOffer,
		Requestable:  detail.Requestable,
	})
}

func (s *Server) handleGetOffers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	cardIDs, err := s.collection.GetOfferedCards(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]int64{"card_ids": cardIDs})
}

func (s *Server) handleGetPins(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	pins, err := s.collection.ListPinned(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]pinResponse, 0, len(pins))
	for _, pin := range pins {
		response = append(response, pinResponse{CardID: pin.CardID, Position: pin.Position})
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code     string  `json:"code"`
		Name     string  `json:"name"`
		SetName  string  `json:"set_name"`
		Rarity   *string `json:"rarity"`
		Color    *string `json:"color"`
		ImageURL *string `json:"image_url"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	card := &models.Card{
		Code:     body.Code,
		Name:     body.Name,
		SetName:  body.SetName,
		Rarity:   body.Rarity,
		Color:    body.Color,
		ImageURL: body.ImageURL,
	}
	if err := s.cards.CreateCard(r.Context(), card); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.cards.ListCards(r.Context(), r.URL.Query().Get("set"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		response = append(response, toCardResponse(card))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	card, err := s.cards.GetCard(r.Context(), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(card))
}

func (s *Server) handleAdjustInventory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CardID int64 `json:"card_id"`
		Delta  int64 `json:"delta"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	newQuantity, err := s.inventory.Adjust(r.Context(), callerID(r.Context()), body.CardID, body.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"card_id":      body.CardID,
		"new_quantity": newQuantity,
	})
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToUserID string `json:"to_user_id"`
		CardID   int64  `json:"card_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	request, err := s.requests.CreateRequest(r.Context(), callerID(r.Context()), body.ToUserID, body.CardID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestResponse(request))
}

func (s *Server) handleWithdrawRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToUserID string `json:"to_user_id"`
		CardID   int64  `json:"card_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.requests.WithdrawRequest(r.Context(), callerID(r.Context()), body.ToUserID, body.CardID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	direction := r.URL.Query().Get("direction")

	var requests []*models.TradeRequest
	var err error
	switch direction {
	case "", "incoming":
		requests, err = s.requests.ListIncoming(r.Context(), callerID(r.Context()))
	case "outgoing":
		requests, err = s.requests.ListOutgoing(r.Context(), callerID(r.Context()))
	default:
		writeError(w, r, fmt.Errorf("unknown direction %q: %w", direction, service.ErrInvalidInput))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		response = append(response, toRequestResponse(request))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleDecideRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "requestID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Decision string `json:"decision"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	request, session, err := s.requests.Decide(r.Context(), requestID, callerID(r.Context()), models.TradeDecision(body.Decision))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := struct {
		Status    string `json:"status"`
		SessionID *int64 `json:"session_id,omitempty"`
	}{Status: string(request.Status)}
	if session != nil {
		response.SessionID = &session.ID
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.ListSessionsByUser(r.Context(), callerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, toSessionResponse(session))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !session.IsParticipant(callerID(r.Context())) {
		writeError(w, r, service.ErrForbidden)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleConfirmSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.sessions.Confirm(r.Context(), sessionID, callerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleAddOffer(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.collection.SetOffered(r.Context(), callerID(r.Context()), cardID, true); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveOffer(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.collection.SetOffered(r.Context(), callerID(r.Context()), cardID, false); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePinCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	pin, err := s.collection.Pin(r.Context(), callerID(r.Context()), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, pinResponse{CardID: pin.CardID, Position: pin.Position})
}

func (s *Server) handleUnpinCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.collection.Unpin(r.Context(), callerID(r.Context()), cardID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
