package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
	"go.uber.org/zap"
)

const system = "ledger"

// Service is the fungible token ledger the marketplace prices sales in. The
// marketplace never holds buyer funds; transfers are instructed here and move
// value directly between the parties.
//
// TransferWithCallback is the settlement hook: on success the ledger calls
// the marketplace back with (from, amount, payload) before the method
// returns.
type Service interface {
	BalanceOf(address string) (*big.Int, error)
	Allowance(owner, spender string) (*big.Int, error)
	TransferFrom(from, to string, amount *big.Int, ref string) error
	TransferWithCallback(from, to string, amount *big.Int, payload []byte, ref string) error
}

type service struct {
	client *rpc.Client
}

func NewLedgerService(client *rpc.Client) Service {
	return service{client}
}

func (s service) BalanceOf(address string) (*big.Int, error) {
	response, err := s.client.Call("BalanceOf", address)
	if err != nil {
		return nil, rpc.NewExternalError(system, "BalanceOf", err)
	}

	return parseAmount(response)
}

func (s service) Allowance(owner, spender string) (*big.Int, error) {
	response, err := s.client.Call("Allowance", owner, spender)
	if err != nil {
		return nil, rpc.NewExternalError(system, "Allowance", err)
	}

	return parseAmount(response)
}

func (s service) TransferFrom(from, to string, amount *big.Int, ref string) error {
	zap.L().With(
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.String()),
		zap.String("ref", ref),
	).Info("Ledger: TransferFrom")

	if _, err := s.client.Call("TransferFrom", from, to, amount.String(), ref); err != nil {
		return rpc.NewExternalError(system, "TransferFrom", err)
	}

	return nil
}

func (s service) TransferWithCallback(from, to string, amount *big.Int, payload []byte, ref string) error {
	zap.L().With(
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.String()),
		zap.String("ref", ref),
	).Info("Ledger: TransferWithCallback")

	if _, err := s.client.Call("TransferWithCallback", from, to, amount.String(), hex.EncodeToString(payload), ref); err != nil {
		return rpc.NewExternalError(system, "TransferWithCallback", err)
	}

	return nil
}

func parseAmount(response *rpc.Response) (*big.Int, error) {
	jsonString, err := response.ResultAsJson()
	if err != nil {
		return nil, err
	}

	var result string
	if err := json.Unmarshal(jsonString, &result); err != nil {
		return nil, err
	}

	amount, ok := new(big.Int).SetString(result, 10)
	if !ok {
		return nil, fmt.Errorf("ledger returned a non numeric amount: %s", result)
	}

	return amount, nil
}
