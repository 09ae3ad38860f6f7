package entities

import (
	"encoding/json"
	"fmt"

	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/service/policy"
)

// EvaluationRequest asks the policy engine what a proposed action
// would require. Params is decoded per action kind.
type EvaluationRequest struct {
	Action enum.GovernanceAction `json:"action"`
	Params json.RawMessage       `json:"params"`
}

func (r *EvaluationRequest) Verify() error {
	if r.Action == "" {
		return grerrors.InvalidRequestParam.WithMsg("action is required")
	}

	return nil
}

// DecodeParams unmarshals the raw params into the typed variant the
// policy engine evaluates. Unknown actions fall back to GenericParams,
// which evaluates to plain board approval.
func DecodeParams(action enum.GovernanceAction, raw json.RawMessage) (policy.Params, error) {
	unmarshal := func(v interface{}) error {
		if len(raw) == 0 {
			return grerrors.InvalidRequestParam.WithMsg(
				fmt.Sprintf("params are required for %v", action))
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return grerrors.InvalidRequestParam.WithMsg(
				fmt.Sprintf("params are invalid for %v: %v", action, err))
		}
		return nil
	}

	switch action {
	case enum.ShareIssuance:
		p := policy.IssuanceParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case enum.ShareTransfer:
		p := policy.TransferParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case enum.ShareConversion:
		p := policy.ConversionParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case enum.Borrowing:
		p := policy.BorrowingParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case enum.ConstitutionAmendment:
		p := policy.AmendmentParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case enum.ShareRepurchase:
		p := policy.RepurchaseParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case enum.MergerAcquisition:
		p := policy.MergerParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case enum.DividendDeclaration:
		p := policy.DividendParams{}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return policy.GenericParams{Kind: action}, nil
	}
}
