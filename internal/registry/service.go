package registry

import (
	"encoding/json"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
	"github.com/ZilDuck/zilliqa-nft-marketplace/pkg/addr"
	"go.uber.org/zap"
)

const system = "registry"

// Service is the item ownership registry. Registry contracts are addressed
// per call because listings can point at different contracts.
//
// OwnerOf fails with a not-found kind when the item does not exist; that is
// how a burned or never-minted item is detected.
type Service interface {
	OwnerOf(contract string, tokenId uint64) (string, error)
	GetApproved(contract string, tokenId uint64) (string, error)
	IsApprovedForAll(contract, owner, operator string) (bool, error)
	SafeTransferFrom(contract, from, to string, tokenId uint64, ref string) error
}

type service struct {
	client *rpc.Client
}

func NewRegistryService(client *rpc.Client) Service {
	return service{client}
}

func (s service) OwnerOf(contract string, tokenId uint64) (string, error) {
	response, err := s.client.Call("OwnerOf", contract, tokenId)
	if err != nil {
		return "", rpc.NewExternalError(system, "OwnerOf", err)
	}

	return parseAddress(response)
}

func (s service) GetApproved(contract string, tokenId uint64) (string, error) {
	response, err := s.client.Call("GetApproved", contract, tokenId)
	if err != nil {
		return "", rpc.NewExternalError(system, "GetApproved", err)
	}

	return parseAddress(response)
}

func (s service) IsApprovedForAll(contract, owner, operator string) (bool, error) {
	response, err := s.client.Call("IsApprovedForAll", contract, owner, operator)
	if err != nil {
		return false, rpc.NewExternalError(system, "IsApprovedForAll", err)
	}

	jsonString, err := response.ResultAsJson()
	if err != nil {
		return false, err
	}

	var approved bool
	if err := json.Unmarshal(jsonString, &approved); err != nil {
		return false, err
	}

	return approved, nil
}

func (s service) SafeTransferFrom(contract, from, to string, tokenId uint64, ref string) error {
	zap.L().With(
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("ref", ref),
	).Info("Registry: SafeTransferFrom")

	if _, err := s.client.Call("SafeTransferFrom", contract, from, to, tokenId, ref); err != nil {
		return rpc.NewExternalError(system, "SafeTransferFrom", err)
	}

	return nil
}

func parseAddress(response *rpc.Response) (string, error) {
	jsonString, err := response.ResultAsJson()
	if err != nil {
		return "", err
	}

	var result string
	if err := json.Unmarshal(jsonString, &result); err != nil {
		return "", err
	}

	return addr.Normalize(result), nil
}
