package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"marketd/crypto"
	"marketd/native/market"
	"marketd/observability"
)

const (
	codeMarketInvalidParams = -32031
	codeMarketNotFound      = -32032
	codeMarketForbidden     = -32033
	codeMarketConflict      = -32034
	codeMarketInternal      = -32035
)

type marketOfferParams struct {
	Seller   string `json:"seller"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity uint64 `json:"quantity"`
}

type marketOrderParams struct {
	Buyer string `json:"buyer"`
	Name  string `json:"name"`
}

type marketCompleteParams struct {
	Caller string `json:"caller"`
	Name   string `json:"name"`
}

type marketComplainParams struct {
	Caller string `json:"caller"`
	Buyer  string `json:"buyer"`
	Name   string `json:"name"`
}

type marketDepositParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type marketGetParams struct {
	Name string `json:"name"`
}

type marketBalanceParams struct {
	Address string `json:"address"`
}

type itemJSON struct {
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Quantity uint64  `json:"quantity"`
	Seller   string  `json:"seller"`
	Buyer    *string `json:"buyer,omitempty"`
	Status   string  `json:"status"`
}

type balanceJSON struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func (s *Server) handleMarketOffer(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params marketOfferParams
	if !decodeParams(w, req, &params) {
		return
	}
	seller, err := crypto.ParseMarketAddress(params.Seller)
	if err != nil {
		s.writeInvalidParams(w, req, "market_offer", err)
		return
	}
	price, err := parsePositiveBigInt(params.Price)
	if err != nil {
		s.writeInvalidParams(w, req, "market_offer", err)
		return
	}
	item, err := s.engine.Offer(seller, params.Name, price, params.Quantity)
	if err != nil {
		s.writeMarketError(w, req, "market_offer", err)
		return
	}
	writeResult(w, req.ID, itemToJSON(item))
}

func (s *Server) handleMarketOrder(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params marketOrderParams
	if !decodeParams(w, req, &params) {
		return
	}
	buyer, err := crypto.ParseMarketAddress(params.Buyer)
	if err != nil {
		s.writeInvalidParams(w, req, "market_order", err)
		return
	}
	if err := s.engine.Order(buyer, params.Name); err != nil {
		s.writeMarketError(w, req, "market_order", err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ordered": true})
}

func (s *Server) handleMarketComplete(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params marketCompleteParams
	if !decodeParams(w, req, &params) {
		return
	}
	caller, err := crypto.ParseMarketAddress(params.Caller)
	if err != nil {
		s.writeInvalidParams(w, req, "market_complete", err)
		return
	}
	if err := s.engine.Complete(caller, params.Name); err != nil {
		s.writeMarketError(w, req, "market_complete", err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"completed": true})
}

func (s *Server) handleMarketComplain(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params marketComplainParams
	if !decodeParams(w, req, &params) {
		return
	}
	caller, err := crypto.ParseMarketAddress(params.Caller)
	if err != nil {
		s.writeInvalidParams(w, req, "market_complain", err)
		return
	}
	buyer, err := crypto.ParseMarketAddress(params.Buyer)
	if err != nil {
		s.writeInvalidParams(w, req, "market_complain", err)
		return
	}
	if err := s.engine.Complain(caller, buyer, params.Name); err != nil {
		s.writeMarketError(w, req, "market_complain", err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"complained": true})
}

func (s *Server) handleMarketDeposit(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params marketDepositParams
	if !decodeParams(w, req, &params) {
		return
	}
	caller, err := crypto.ParseMarketAddress(params.Caller)
	if err != nil {
		s.writeInvalidParams(w, req, "market_deposit", err)
		return
	}
	amount, err := parsePositiveBigInt(params.Amount)
	if err != nil {
		s.writeInvalidParams(w, req, "market_deposit", err)
		return
	}
	if err := s.engine.Deposit(caller, amount); err != nil {
		s.writeMarketError(w, req, "market_deposit", err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"deposited": true})
}

func (s *Server) handleMarketGet(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params marketGetParams
	if !decodeParams(w, req, &params) {
		return
	}
	item, err := s.engine.GetItem(params.Name)
	if err != nil {
		s.writeMarketError(w, req, "market_get", err)
		return
	}
	writeResult(w, req.ID, itemToJSON(item))
}

func (s *Server) handleMarketBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params marketBalanceParams
	if !decodeParams(w, req, &params) {
		return
	}
	addr, err := crypto.ParseMarketAddress(params.Address)
	if err != nil {
		s.writeInvalidParams(w, req, "market_balance", err)
		return
	}
	balance := s.engine.EscrowBalance(addr)
	writeResult(w, req.ID, balanceJSON{Address: params.Address, Amount: balance.String()})
}

func decodeParams(w http.ResponseWriter, req *RPCRequest, dst interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", "exactly one parameter object expected")
		return false
	}
	if err := json.Unmarshal(req.Params[0], dst); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
		return false
	}
	return true
}

func parsePositiveBigInt(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, errors.New("amount must be a base-10 integer")
	}
	if amount.Sign() <= 0 {
		return nil, errors.New("amount must be positive")
	}
	return amount, nil
}

func itemToJSON(item *market.Item) itemJSON {
	out := itemJSON{
		Name:     item.Name,
		Price:    item.Price.String(),
		Quantity: item.Quantity,
		Seller:   crypto.FormatMarketAddress(item.Seller),
		Status:   item.Status.String(),
	}
	if item.Buyer != market.ZeroAddress {
		buyer := crypto.FormatMarketAddress(item.Buyer)
		out.Buyer = &buyer
	}
	return out
}

func (s *Server) writeInvalidParams(w http.ResponseWriter, req *RPCRequest, method string, err error) {
	observability.ModuleMetrics().RecordError(metricsModule, method, strconv.Itoa(codeMarketInvalidParams))
	writeError(w, http.StatusBadRequest, req.ID, codeMarketInvalidParams, "invalid_params", err.Error())
}

func (s *Server) writeMarketError(w http.ResponseWriter, req *RPCRequest, method string, err error) {
	status, code, message := marketErrorToRPC(err)
	observability.ModuleMetrics().RecordError(metricsModule, method, strconv.Itoa(code))
	writeError(w, status, req.ID, code, message, err.Error())
}

func marketErrorToRPC(err error) (int, int, string) {
	switch {
	case errors.Is(err, market.ErrInvalidInput):
		return http.StatusBadRequest, codeMarketInvalidParams, "invalid_params"
	case errors.Is(err, market.ErrItemNotFound):
		return http.StatusNotFound, codeMarketNotFound, "not_found"
	case errors.Is(err, market.ErrUnauthorized), errors.Is(err, market.ErrNotBuyer):
		return http.StatusForbidden, codeMarketForbidden, "forbidden"
	case errors.Is(err, market.ErrDuplicateItem),
		errors.Is(err, market.ErrNotAvailable),
		errors.Is(err, market.ErrWrongState),
		errors.Is(err, market.ErrInsufficientFunds),
		errors.Is(err, market.ErrInsufficientAllowance):
		return http.StatusConflict, codeMarketConflict, "conflict"
	default:
		return http.StatusInternalServerError, codeMarketInternal, "internal_error"
	}
}
