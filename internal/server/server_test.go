package server

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	list      func(caller, contract string, tokenId uint64, price, metadataUri string) (uint64, error)
	buy       func(caller string, listingId uint64) (uint64, error)
	settle    func(caller, from string, amount *big.Int, payload []byte) error
	listing   func(listingId uint64) (entity.Listing, error)
	order     func(orderId uint64) (entity.Order, error)
	feePct    func(caller string, bps uint64) error
	minFee    func(caller string, minimumFee *big.Int) error
	makeAdmin func(caller, admin string) error
}

var _ marketplace.Engine = (*stubEngine)(nil)

func (s *stubEngine) List(caller, contract string, tokenId uint64, price, metadataUri string) (uint64, error) {
	if s.list == nil {
		return 0, nil
	}
	return s.list(caller, contract, tokenId, price, metadataUri)
}

func (s *stubEngine) Buy(caller string, listingId uint64) (uint64, error) {
	if s.buy == nil {
		return 0, nil
	}
	return s.buy(caller, listingId)
}

func (s *stubEngine) CompleteSettlement(caller, from string, amount *big.Int, payload []byte) error {
	if s.settle == nil {
		return nil
	}
	return s.settle(caller, from, amount, payload)
}

func (s *stubEngine) GetListing(listingId uint64) (entity.Listing, error) {
	if s.listing == nil {
		return entity.Listing{}, nil
	}
	return s.listing(listingId)
}

func (s *stubEngine) GetOrder(orderId uint64) (entity.Order, error) {
	if s.order == nil {
		return entity.Order{}, nil
	}
	return s.order(orderId)
}

func (s *stubEngine) GetFeePolicy() entity.FeePolicy {
	return entity.FeePolicy{
		Admin:         "0x3333333333333333333333333333333333333333",
		FeePercentBps: 250,
		MinimumFee:    big.NewInt(1000),
	}
}

func (s *stubEngine) ChangeFeePercent(caller string, bps uint64) error {
	if s.feePct == nil {
		return nil
	}
	return s.feePct(caller, bps)
}

func (s *stubEngine) ChangeMinimumFee(caller string, minimumFee *big.Int) error {
	if s.minFee == nil {
		return nil
	}
	return s.minFee(caller, minimumFee)
}

func (s *stubEngine) SetAdmin(caller, admin string) error {
	if s.makeAdmin == nil {
		return nil
	}
	return s.makeAdmin(caller, admin)
}

const testCaller = "0x2222222222222222222222222222222222222222"

func serve(engine *stubEngine, method, path, body string, withCaller bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if withCaller {
		req.Header.Set(CallerHeader, testCaller)
	}

	recorder := httptest.NewRecorder()
	NewServer(engine).Router().ServeHTTP(recorder, req)

	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func TestHomepage(t *testing.T) {
	recorder := serve(&stubEngine{}, "GET", "/", "", false)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Zilliqa NFT Marketplace")
}

func TestListNft(t *testing.T) {
	t.Run("creates the listing", func(t *testing.T) {
		var gotCaller, gotContract, gotPrice, gotUri string
		var gotTokenId uint64

		engine := &stubEngine{
			list: func(caller, contract string, tokenId uint64, price, metadataUri string) (uint64, error) {
				gotCaller, gotContract, gotTokenId, gotPrice, gotUri = caller, contract, tokenId, price, metadataUri
				return 7, nil
			},
		}

		body := `{"contract":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","tokenId":42,"price":"5000","metadataUri":"ipfs://item/42"}`
		recorder := serve(engine, "POST", "/nft", body, true)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.JSONEq(t, `{"listingId":7}`, recorder.Body.String())

		assert.Equal(t, testCaller, gotCaller)
		assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", gotContract)
		assert.Equal(t, uint64(42), gotTokenId)
		assert.Equal(t, "5000", gotPrice)
		assert.Equal(t, "ipfs://item/42", gotUri)
	})

	t.Run("requires the caller header", func(t *testing.T) {
		recorder := serve(&stubEngine{}, "POST", "/nft", `{}`, false)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "InvalidAddress", decodeError(t, recorder).Kind)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		recorder := serve(&stubEngine{}, "POST", "/nft", `{`, true)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "InvalidRequest", decodeError(t, recorder).Kind)
	})

	t.Run("maps a missing item to 404", func(t *testing.T) {
		engine := &stubEngine{
			list: func(string, string, uint64, string, string) (uint64, error) {
				return 0, marketplace.ErrItemNotFound
			},
		}

		recorder := serve(engine, "POST", "/nft", `{"contract":"0xaaaa","tokenId":1,"price":"5000"}`, true)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "ItemNotFound", decodeError(t, recorder).Kind)
	})

	t.Run("maps a rejected lister to 403", func(t *testing.T) {
		engine := &stubEngine{
			list: func(string, string, uint64, string, string) (uint64, error) {
				return 0, marketplace.ErrNotAuthorized
			},
		}

		recorder := serve(engine, "POST", "/nft", `{"tokenId":1}`, true)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestBuyNft(t *testing.T) {
	t.Run("returns the order id", func(t *testing.T) {
		engine := &stubEngine{
			buy: func(caller string, listingId uint64) (uint64, error) {
				assert.Equal(t, testCaller, caller)
				assert.Equal(t, uint64(42), listingId)
				return 3, nil
			},
		}

		recorder := serve(engine, "POST", "/nft/42/buy", "", true)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"orderId":3}`, recorder.Body.String())
	})

	t.Run("rejects a non numeric listing id", func(t *testing.T) {
		recorder := serve(&stubEngine{}, "POST", "/nft/abc/buy", "", true)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("reports the cancelled order on a funding failure", func(t *testing.T) {
		engine := &stubEngine{
			buy: func(string, uint64) (uint64, error) {
				return 9, marketplace.ErrInsufficientBalance
			},
		}

		recorder := serve(engine, "POST", "/nft/42/buy", "", true)

		assert.Equal(t, http.StatusPaymentRequired, recorder.Code)

		body := decodeError(t, recorder)
		assert.Equal(t, "InsufficientBalance", body.Kind)
		require.NotNil(t, body.ListingId)
		assert.Equal(t, uint64(42), *body.ListingId)
		require.NotNil(t, body.OrderId)
		assert.Equal(t, uint64(9), *body.OrderId)
	})

	t.Run("omits the order id when no order was created", func(t *testing.T) {
		engine := &stubEngine{
			buy: func(string, uint64) (uint64, error) {
				return 0, marketplace.ErrItemGone
			},
		}

		recorder := serve(engine, "POST", "/nft/42/buy", "", true)

		assert.Equal(t, http.StatusConflict, recorder.Code)

		body := decodeError(t, recorder)
		assert.Equal(t, "ItemNoLongerExists", body.Kind)
		assert.Nil(t, body.OrderId)
	})

	t.Run("maps a stale snapshot to 409", func(t *testing.T) {
		engine := &stubEngine{
			buy: func(string, uint64) (uint64, error) {
				return 0, marketplace.ErrOwnershipChanged
			},
		}

		recorder := serve(engine, "POST", "/nft/42/buy", "", true)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("maps an external failure to 502", func(t *testing.T) {
		engine := &stubEngine{
			buy: func(string, uint64) (uint64, error) {
				return 0, rpc.NewExternalError("registry", "OwnerOf", errors.New("connection refused"))
			},
		}

		recorder := serve(engine, "POST", "/nft/42/buy", "", true)

		assert.Equal(t, http.StatusBadGateway, recorder.Code)
		assert.Equal(t, "ExternalFailure.opaque", decodeError(t, recorder).Kind)
	})
}

func TestGetNft(t *testing.T) {
	t.Run("returns the listing", func(t *testing.T) {
		engine := &stubEngine{
			listing: func(listingId uint64) (entity.Listing, error) {
				return entity.Listing{ListingId: listingId, Price: "5000", TokenId: 42}, nil
			},
		}

		recorder := serve(engine, "GET", "/nft/7", "", false)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var listing entity.Listing
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listing))
		assert.Equal(t, uint64(7), listing.ListingId)
		assert.Equal(t, "5000", listing.Price)
	})

	t.Run("maps a miss to 404", func(t *testing.T) {
		engine := &stubEngine{
			listing: func(uint64) (entity.Listing, error) {
				return entity.Listing{}, marketplace.ErrInvalidListing
			},
		}

		recorder := serve(engine, "GET", "/nft/7", "", false)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "InvalidListing", decodeError(t, recorder).Kind)
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("returns the order", func(t *testing.T) {
		engine := &stubEngine{
			order: func(orderId uint64) (entity.Order, error) {
				return entity.Order{OrderId: orderId, Status: entity.OrderFulfilled}, nil
			},
		}

		recorder := serve(engine, "GET", "/order/3", "", false)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var order entity.Order
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &order))
		assert.Equal(t, uint64(3), order.OrderId)
		assert.Equal(t, entity.OrderFulfilled, order.Status)
	})

	t.Run("maps a miss to 404", func(t *testing.T) {
		engine := &stubEngine{
			order: func(uint64) (entity.Order, error) {
				return entity.Order{}, marketplace.ErrInvalidOrder
			},
		}

		recorder := serve(engine, "GET", "/order/3", "", false)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestGetFees(t *testing.T) {
	recorder := serve(&stubEngine{}, "GET", "/fees", "", false)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{
		"admin": "0x3333333333333333333333333333333333333333",
		"feePercentBps": 250,
		"minimumFee": "1000"
	}`, recorder.Body.String())
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("forwards the fee percent change", func(t *testing.T) {
		var gotCaller string
		var gotBps uint64

		engine := &stubEngine{
			feePct: func(caller string, bps uint64) error {
				gotCaller, gotBps = caller, bps
				return nil
			},
		}

		recorder := serve(engine, "PUT", "/admin/fee-percent", `{"feePercentBps":500}`, true)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, testCaller, gotCaller)
		assert.Equal(t, uint64(500), gotBps)
	})

	t.Run("maps a non admin caller to 403", func(t *testing.T) {
		engine := &stubEngine{
			feePct: func(string, uint64) error { return marketplace.ErrNotAdmin },
		}

		recorder := serve(engine, "PUT", "/admin/fee-percent", `{"feePercentBps":500}`, true)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, "NotAdmin", decodeError(t, recorder).Kind)
	})

	t.Run("forwards the minimum fee change", func(t *testing.T) {
		var gotFee *big.Int

		engine := &stubEngine{
			minFee: func(caller string, minimumFee *big.Int) error {
				gotFee = minimumFee
				return nil
			},
		}

		recorder := serve(engine, "PUT", "/admin/minimum-fee", `{"minimumFee":"2000"}`, true)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"minimumFee":"2000"}`, recorder.Body.String())
		require.NotNil(t, gotFee)
		assert.Equal(t, "2000", gotFee.String())
	})

	t.Run("rejects a non numeric minimum fee", func(t *testing.T) {
		recorder := serve(&stubEngine{}, "PUT", "/admin/minimum-fee", `{"minimumFee":"lots"}`, true)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "InvalidRequest", decodeError(t, recorder).Kind)
	})

	t.Run("forwards the admin handover", func(t *testing.T) {
		engine := &stubEngine{
			makeAdmin: func(caller, admin string) error {
				assert.Equal(t, testCaller, caller)
				assert.Equal(t, "0x6666666666666666666666666666666666666666", admin)
				return nil
			},
		}

		body := `{"admin":"0x6666666666666666666666666666666666666666"}`
		recorder := serve(engine, "PUT", "/admin/owner", body, true)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestCompleteSettlement(t *testing.T) {
	t.Run("decodes the settlement request", func(t *testing.T) {
		var gotFrom string
		var gotAmount *big.Int
		var gotPayload []byte

		engine := &stubEngine{
			settle: func(caller, from string, amount *big.Int, payload []byte) error {
				assert.Equal(t, testCaller, caller)
				gotFrom, gotAmount, gotPayload = from, amount, payload
				return nil
			},
		}

		body := `{"from":"0x1111111111111111111111111111111111111111","amount":"1000","payload":"0x0000000000000005"}`
		recorder := serve(engine, "POST", "/settlement/complete", body, true)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "0x1111111111111111111111111111111111111111", gotFrom)
		assert.Equal(t, "1000", gotAmount.String())
		assert.Equal(t, marketplace.EncodeOrderPayload(5), gotPayload)
	})

	t.Run("accepts a payload without the hex prefix", func(t *testing.T) {
		var gotPayload []byte

		engine := &stubEngine{
			settle: func(caller, from string, amount *big.Int, payload []byte) error {
				gotPayload = payload
				return nil
			},
		}

		body := `{"from":"0x1111111111111111111111111111111111111111","amount":"1000","payload":"0000000000000005"}`
		recorder := serve(engine, "POST", "/settlement/complete", body, true)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, marketplace.EncodeOrderPayload(5), gotPayload)
	})

	t.Run("rejects a non numeric amount", func(t *testing.T) {
		body := `{"from":"0x1111111111111111111111111111111111111111","amount":"lots","payload":"00"}`
		recorder := serve(&stubEngine{}, "POST", "/settlement/complete", body, true)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects a payload that is not hex", func(t *testing.T) {
		body := `{"from":"0x1111111111111111111111111111111111111111","amount":"1000","payload":"zz"}`
		recorder := serve(&stubEngine{}, "POST", "/settlement/complete", body, true)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("maps an unauthorized caller to 401", func(t *testing.T) {
		engine := &stubEngine{
			settle: func(string, string, *big.Int, []byte) error {
				return marketplace.ErrUnauthorized
			},
		}

		body := `{"from":"0x1111111111111111111111111111111111111111","amount":"1000","payload":"0000000000000005"}`
		recorder := serve(engine, "POST", "/settlement/complete", body, true)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "Unauthorized", decodeError(t, recorder).Kind)
	})
}

func TestNotFoundRoute(t *testing.T) {
	recorder := serve(&stubEngine{}, "GET", "/no-such-page", "", false)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NotFound", decodeError(t, recorder).Kind)
}
