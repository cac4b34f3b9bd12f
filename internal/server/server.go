package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CallerHeader carries the authenticated caller address. Signature
// verification happens upstream; by the time a request reaches this
// server the header is trusted.
const CallerHeader = "X-Caller-Address"

type Server struct {
	engine marketplace.Engine
}

func NewServer(engine marketplace.Engine) Server {
	return Server{engine}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/nft", s.handleListNft).Methods("POST")
	r.HandleFunc("/nft/{listingId}/buy", s.handleBuyNft).Methods("POST")
	r.HandleFunc("/nft/{listingId}", s.handleGetNft).Methods("GET")
	r.HandleFunc("/order/{orderId}", s.handleGetOrder).Methods("GET")
	r.HandleFunc("/fees", s.handleGetFees).Methods("GET")
	r.HandleFunc("/admin/fee-percent", s.handleSetFeePercent).Methods("PUT")
	r.HandleFunc("/admin/minimum-fee", s.handleSetMinimumFee).Methods("PUT")
	r.HandleFunc("/admin/owner", s.handleSetAdmin).Methods("PUT")
	r.HandleFunc("/settlement/complete", s.handleCompleteSettlement).Methods("POST")
	r.NotFoundHandler = notFoundHandler()

	return r
}

type listRequest struct {
	Contract    string `json:"contract"`
	TokenId     uint64 `json:"tokenId"`
	Price       string `json:"price"`
	MetadataUri string `json:"metadataUri"`
}

type settlementRequest struct {
	From    string `json:"from"`
	Amount  string `json:"amount"`
	Payload string `json:"payload"`
}

type errorBody struct {
	Error     string  `json:"error"`
	Kind      string  `json:"kind"`
	ListingId *uint64 `json:"listingId,omitempty"`
	OrderId   *uint64 `json:"orderId,omitempty"`
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "Zilliqa NFT Marketplace")
}

func (s Server) handleListNft(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	listingId, err := s.engine.List(caller, req.Contract, req.TokenId, req.Price, req.MetadataUri)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	writeJson(w, http.StatusCreated, map[string]uint64{"listingId": listingId})
}

func (s Server) handleBuyNft(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	listingId, err := getId(r, "listingId")
	if err != nil {
		badRequest(w, "invalid listing id")
		return
	}

	orderId, err := s.engine.Buy(caller, listingId)
	if err != nil {
		body := errorBody{ListingId: &listingId}
		if orderId != 0 {
			body.OrderId = &orderId
		}
		writeError(w, err, body)
		return
	}

	writeJson(w, http.StatusOK, map[string]uint64{"orderId": orderId})
}

func (s Server) handleGetNft(w http.ResponseWriter, r *http.Request) {
	listingId, err := getId(r, "listingId")
	if err != nil {
		badRequest(w, "invalid listing id")
		return
	}

	listing, err := s.engine.GetListing(listingId)
	if err != nil {
		writeError(w, err, errorBody{ListingId: &listingId})
		return
	}

	writeJson(w, http.StatusOK, listing)
}

func (s Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderId, err := getId(r, "orderId")
	if err != nil {
		badRequest(w, "invalid order id")
		return
	}

	order, err := s.engine.GetOrder(orderId)
	if err != nil {
		writeError(w, err, errorBody{OrderId: &orderId})
		return
	}

	writeJson(w, http.StatusOK, order)
}

func (s Server) handleGetFees(w http.ResponseWriter, r *http.Request) {
	policy := s.engine.GetFeePolicy()

	writeJson(w, http.StatusOK, map[string]interface{}{
		"admin":         policy.Admin,
		"feePercentBps": policy.FeePercentBps,
		"minimumFee":    policy.MinimumFee.String(),
	})
}

func (s Server) handleSetFeePercent(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	var req struct {
		FeePercentBps uint64 `json:"feePercentBps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := s.engine.ChangeFeePercent(caller, req.FeePercentBps); err != nil {
		writeError(w, err, errorBody{})
		return
	}

	writeJson(w, http.StatusOK, map[string]uint64{"feePercentBps": req.FeePercentBps})
}

func (s Server) handleSetMinimumFee(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	var req struct {
		MinimumFee string `json:"minimumFee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	minimumFee, ok := new(big.Int).SetString(req.MinimumFee, 10)
	if !ok {
		badRequest(w, "minimum fee is not numeric")
		return
	}

	if err := s.engine.ChangeMinimumFee(caller, minimumFee); err != nil {
		writeError(w, err, errorBody{})
		return
	}

	writeJson(w, http.StatusOK, map[string]string{"minimumFee": minimumFee.String()})
}

func (s Server) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	var req struct {
		Admin string `json:"admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := s.engine.SetAdmin(caller, req.Admin); err != nil {
		writeError(w, err, errorBody{})
		return
	}

	writeJson(w, http.StatusOK, map[string]string{"admin": req.Admin})
}

func (s Server) handleCompleteSettlement(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err, errorBody{})
		return
	}

	var req settlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		badRequest(w, "amount is not numeric")
		return
	}

	payload, err := hex.DecodeString(strings.TrimPrefix(req.Payload, "0x"))
	if err != nil {
		badRequest(w, "payload is not hex encoded")
		return
	}

	if err := s.engine.CompleteSettlement(caller, req.From, amount, payload); err != nil {
		writeError(w, err, errorBody{})
		return
	}

	w.WriteHeader(http.StatusOK)
}

func getCaller(r *http.Request) (string, error) {
	caller := r.Header.Get(CallerHeader)
	if caller == "" {
		return "", marketplace.ErrInvalidAddress
	}

	return caller, nil
}

func getId(r *http.Request, name string) (uint64, error) {
	id, ok := mux.Vars(r)[name]
	if !ok {
		return 0, errors.New("invalid parameters")
	}

	return strconv.ParseUint(id, 10, 64)
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error, body errorBody) {
	body.Error = err.Error()
	body.Kind = marketplace.Kind(err)

	writeJson(w, statusFor(err), body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJson(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "InvalidRequest"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, marketplace.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, marketplace.ErrNotAdmin),
		errors.Is(err, marketplace.ErrNotAuthorized),
		errors.Is(err, marketplace.ErrSameParty):
		return http.StatusForbidden
	case errors.Is(err, marketplace.ErrInvalidListing),
		errors.Is(err, marketplace.ErrInvalidOrder),
		errors.Is(err, marketplace.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, marketplace.ErrItemGone),
		errors.Is(err, marketplace.ErrOwnershipChanged):
		return http.StatusConflict
	case errors.Is(err, marketplace.ErrInsufficientBalance),
		errors.Is(err, marketplace.ErrInsufficientAllowance):
		return http.StatusPaymentRequired
	case errors.Is(err, marketplace.ErrInvalidAddress),
		errors.Is(err, marketplace.ErrInvalidRegistry),
		errors.Is(err, marketplace.ErrInvalidPrice),
		errors.Is(err, marketplace.ErrInvalidFee),
		errors.Is(err, marketplace.ErrFeeExceedsPrice):
		return http.StatusBadRequest
	}

	var extErr rpc.ExternalError
	if errors.As(err, &extErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusNotFound, errorBody{Error: "page not found", Kind: "NotFound"})
	})
}
