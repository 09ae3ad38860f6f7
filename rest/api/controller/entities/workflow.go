package entities

import (
	"encoding/json"

	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models/enum"
)

// CreateWorkflowRequest evaluates the action and, when the policy
// produces a workflow spec, persists it with its step plan.
type CreateWorkflowRequest struct {
	Action enum.GovernanceAction `json:"action"`
	Params json.RawMessage       `json:"params"`
}

func (r *CreateWorkflowRequest) Verify() error {
	if r.Action == "" {
		return grerrors.InvalidRequestParam.WithMsg("action is required")
	}

	return nil
}

type AdvanceStepRequest struct {
	Outcome  enum.StepStatus `json:"outcome"`
	Response string          `json:"response"`
}

func (r *AdvanceStepRequest) Verify() error {
	if r.Outcome != enum.StepApproved && r.Outcome != enum.StepRejected {
		return grerrors.InvalidRequestParam.WithMsg("outcome must be approved or rejected")
	}
	if r.Outcome == enum.StepRejected && r.Response == "" {
		return grerrors.InvalidRequestParam.WithMsg("response is required when rejecting")
	}

	return nil
}

type CancelWorkflowRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelWorkflowRequest) Verify() error {
	if r.Reason == "" {
		return grerrors.InvalidRequestParam.WithMsg("reason is required")
	}

	return nil
}

type GenerateResolutionRequest struct {
	Kind        enum.ResolutionKind `json:"kind"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
}

func (r *GenerateResolutionRequest) Verify() error {
	if !enum.ValidResolutionKind(r.Kind) {
		return grerrors.InvalidRequestParam.WithMsg("invalid resolution kind")
	}
	if r.Title == "" {
		return grerrors.InvalidRequestParam.WithMsg("title is required")
	}

	return nil
}

type VoteRequest struct {
	ShareholderID string `json:"shareholder_id"`
	Favor         bool   `json:"favor"`
}

func (r *VoteRequest) Verify() error {
	if r.ShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("shareholder_id is required")
	}

	return nil
}

// SignatureRequest is the written-consent path. Signing is assenting,
// so there is no favor field.
type SignatureRequest struct {
	ShareholderID string `json:"shareholder_id"`
}

func (r *SignatureRequest) Verify() error {
	if r.ShareholderID == "" {
		return grerrors.InvalidRequestParam.WithMsg("shareholder_id is required")
	}

	return nil
}
