package enum

import (
	"strings"
)

type ShareholderStatus string

const (
	// registered and eligible to hold and vote shares
	ShareholderActive ShareholderStatus = "ACTIVE"
	// voting and transfer rights frozen by an admin
	ShareholderSuspended ShareholderStatus = "SUSPENDED"
	// all holdings zeroed - record is kept for the ledger
	// history and can never be hard-deleted
	ShareholderExited ShareholderStatus = "EXITED"
)

type EntityType string

const (
	Individual  EntityType = "individual"
	Corporation EntityType = "corporation"
	Trust       EntityType = "trust"
	Partnership EntityType = "partnership"
	Fund        EntityType = "fund"
)

func ValidEntityType(t EntityType) bool {
	switch t {
	case Individual:
		fallthrough
	case Corporation:
		fallthrough
	case Trust:
		fallthrough
	case Partnership:
		fallthrough
	case Fund:
		return true
	default:
		return false
	}
}

type ShareClass string

const (
	Common     ShareClass = "COMMON"
	PreferredA ShareClass = "PREFERRED_A"
	PreferredB ShareClass = "PREFERRED_B"
	Founder    ShareClass = "FOUNDER"
	OptionPool ShareClass = "OPTION_POOL"
)

var ShareClasses = []ShareClass{
	Common,
	PreferredA,
	PreferredB,
	Founder,
	OptionPool,
}

func ValidShareClass(c ShareClass) bool {
	for _, sc := range ShareClasses {
		if sc == c {
			return true
		}
	}
	return false
}

func (c ShareClass) Preferred() bool {
	return c == PreferredA || c == PreferredB
}

func (c ShareClass) Readable() string {
	return strings.Replace(strings.ToLower(string(c)), "_", " ", -1)
}

type AntiDilution string

const (
	AntiDilutionNone            AntiDilution = "none"
	AntiDilutionWeightedAverage AntiDilution = "weighted_average"
	AntiDilutionFullRatchet     AntiDilution = "full_ratchet"
)

type LedgerEntryKind string

const (
	Issuance     LedgerEntryKind = "ISSUANCE"
	Transfer     LedgerEntryKind = "TRANSFER"
	Conversion   LedgerEntryKind = "CONVERSION"
	Repurchase   LedgerEntryKind = "REPURCHASE"
	Cancellation LedgerEntryKind = "CANCELLATION"
	Dividend     LedgerEntryKind = "DIVIDEND"
	Split        LedgerEntryKind = "SPLIT"
	Bonus        LedgerEntryKind = "BONUS"
)

type GovernanceAction string

const (
	ShareIssuance         GovernanceAction = "share_issuance"
	ShareTransfer         GovernanceAction = "share_transfer"
	ShareConversion       GovernanceAction = "share_conversion"
	Borrowing             GovernanceAction = "borrowing"
	ConstitutionAmendment GovernanceAction = "constitution_amendment"
	ShareRepurchase       GovernanceAction = "share_repurchase"
	MergerAcquisition     GovernanceAction = "merger_acquisition"
	DividendDeclaration   GovernanceAction = "dividend_declaration"
)

func (a GovernanceAction) Readable() string {
	return strings.Replace(string(a), "_", " ", -1)
}

type WorkflowStatus string

const (
	WorkflowPending WorkflowStatus = "pending"
	// all required steps approved in order
	WorkflowApproved WorkflowStatus = "approved"
	// any step rejected - terminal, no resume path
	WorkflowRejected  WorkflowStatus = "rejected"
	WorkflowCancelled WorkflowStatus = "cancelled"
)

func (s WorkflowStatus) Terminal() bool {
	switch s {
	case WorkflowApproved:
		fallthrough
	case WorkflowRejected:
		fallthrough
	case WorkflowCancelled:
		return true
	default:
		return false
	}
}

type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
	StepSkipped  StepStatus = "skipped"
)

type StepType string

const (
	StepApproval StepType = "approval"
	StepNotice   StepType = "notice"
	StepWait     StepType = "wait"
	StepDocument StepType = "document"
)

type StepActor string

const (
	ActorBoard         StepActor = "board"
	ActorShareholders  StepActor = "shareholders"
	ActorSpecificParty StepActor = "specific_party"
	ActorSystem        StepActor = "system"
)

type ApprovalType string

const (
	BoardApproval      ApprovalType = "board_approval"
	SpecialResolution  ApprovalType = "special_resolution"
	OrdinaryResolution ApprovalType = "ordinary_resolution"
	UnanimousConsent   ApprovalType = "unanimous_consent"
	ROFRWaiver         ApprovalType = "rofr_waiver"
)

type ResolutionKind string

const (
	Ordinary        ResolutionKind = "ordinary"
	Special         ResolutionKind = "special"
	Unanimous       ResolutionKind = "unanimous"
	BoardResolution ResolutionKind = "board"
	Written         ResolutionKind = "written"
)

func ValidResolutionKind(k ResolutionKind) bool {
	switch k {
	case Ordinary:
		fallthrough
	case Special:
		fallthrough
	case Unanimous:
		fallthrough
	case BoardResolution:
		fallthrough
	case Written:
		return true
	default:
		return false
	}
}

type ResolutionStatus string

const (
	ResolutionDraft    ResolutionStatus = "draft"
	ResolutionApproved ResolutionStatus = "approved"
	ResolutionRejected ResolutionStatus = "rejected"
	ResolutionFiled    ResolutionStatus = "filed"
)

type AmendmentType string

const (
	AmendVoting      AmendmentType = "voting"
	AmendConversion  AmendmentType = "conversion"
	AmendLiquidation AmendmentType = "liquidation"
	AmendCharter     AmendmentType = "charter"
	AmendGeneral     AmendmentType = "general"
)

type JournalStatus string

const (
	JournalQueued JournalStatus = "QUEUED"
	JournalSent   JournalStatus = "SENT"
)

type AccessKeyStatus string

var (
	AccessKeyActive   AccessKeyStatus = "ACTIVE"
	AccessKeyDisabled AccessKeyStatus = "DISABLED"
)
