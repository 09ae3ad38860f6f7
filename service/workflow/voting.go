package workflow

import (
	"fmt"
	"strings"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/goregistry/equity"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// thresholdsFor maps a resolution kind to its quorum and approval
// percentages. Board resolutions carry no shareholder quorum.
func thresholdsFor(kind enum.ResolutionKind) (quorum, threshold decimal.Decimal) {
	switch kind {
	case enum.Special:
		return equity.SpecialResolutionPct, equity.SpecialResolutionPct
	case enum.Unanimous, enum.Written:
		return equity.UnanimousPct, equity.UnanimousPct
	case enum.BoardResolution:
		return decimal.Zero, equity.OrdinaryResolutionPct
	default:
		return equity.OrdinaryQuorumPct, equity.OrdinaryResolutionPct
	}
}

// CastVote records one holder's vote on an ordinary, special or board
// resolution and re-tallies. The signature row doubles as the vote
// record, its unique index is what stops double voting.
func (s *workflowService) CastVote(resolutionID, shareholderID uuid.UUID, favor bool) (*models.Resolution, error) {
	resolution, err := s.lockResolution(resolutionID)
	if err != nil {
		return nil, err
	}

	if resolution.Kind == enum.Unanimous || resolution.Kind == enum.Written {
		return nil, grerrors.InvalidRequestParam.WithMsg(fmt.Sprintf(
			"%v resolutions are decided by signature, not vote", resolution.Kind))
	}

	return s.tally(resolution, shareholderID, favor)
}

// SignResolution is the consent path for written and unanimous
// resolutions, signing in favor is consenting. On other kinds the
// signature is recorded without touching the tallies.
func (s *workflowService) SignResolution(resolutionID, shareholderID uuid.UUID, favor bool) (*models.Resolution, error) {
	resolution, err := s.lockResolution(resolutionID)
	if err != nil {
		return nil, err
	}

	if resolution.Kind != enum.Unanimous && resolution.Kind != enum.Written {
		if err := s.recordSignature(resolution, shareholderID, favor); err != nil {
			return nil, err
		}
		return s.GetResolution(resolutionID)
	}

	return s.tally(resolution, shareholderID, favor)
}

func (s *workflowService) tally(resolution *models.Resolution, shareholderID uuid.UUID, favor bool) (*models.Resolution, error) {
	if resolution.Decided() {
		return nil, grerrors.Conflict.WithMsg(fmt.Sprintf(
			"resolution %v is already %v", resolution.ID, resolution.Status))
	}

	power, err := s.votingPowerOf(shareholderID)
	if err != nil {
		return nil, err
	}

	if !power.IsPositive() {
		return nil, grerrors.Forbidden.WithMsg(fmt.Sprintf(
			"shareholder %v holds no voting shares", shareholderID))
	}

	if err := s.recordSignature(resolution, shareholderID, favor); err != nil {
		return nil, err
	}

	if favor {
		resolution.VotesFor = resolution.VotesFor.Add(power)
	} else {
		resolution.VotesAgainst = resolution.VotesAgainst.Add(power)
	}

	updates := map[string]interface{}{
		"votes_for":     resolution.VotesFor,
		"votes_against": resolution.VotesAgainst,
	}

	total, err := s.totalVotingPower()
	if err != nil {
		return nil, err
	}

	if outcome, decided := decide(resolution, total); decided {
		updates["status"] = outcome
		if outcome == enum.ResolutionApproved {
			updates["passed_at"] = clock.Now()
		}
	}

	if err := s.tx.Model(resolution).Updates(updates).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return s.GetResolution(resolution.IDAsUUID())
}

// decide checks the tallies against the thresholds. Approval needs
// quorum plus the affirmative share of all voting power; rejection
// happens as soon as the blocking minority is reached.
func decide(r *models.Resolution, totalPower decimal.Decimal) (enum.ResolutionStatus, bool) {
	if !totalPower.IsPositive() {
		return "", false
	}

	hundred := decimal.New(100, 0)

	cast := r.VotesFor.Add(r.VotesAgainst).Add(r.VotesAbstain)
	participationPct := cast.Div(totalPower).Mul(hundred)
	forPct := r.VotesFor.Div(totalPower).Mul(hundred)
	againstPct := r.VotesAgainst.Div(totalPower).Mul(hundred)

	if againstPct.GreaterThan(hundred.Sub(r.ApprovalThresholdPct)) {
		return enum.ResolutionRejected, true
	}

	if participationPct.GreaterThanOrEqual(r.QuorumPct) &&
		forPct.GreaterThanOrEqual(r.ApprovalThresholdPct) {
		return enum.ResolutionApproved, true
	}

	return "", false
}

// FileResolution marks an approved resolution as filed with the
// registry. Filing is the final, archival status.
func (s *workflowService) FileResolution(resolutionID uuid.UUID) (*models.Resolution, error) {
	resolution, err := s.lockResolution(resolutionID)
	if err != nil {
		return nil, err
	}

	if resolution.Status != enum.ResolutionApproved {
		return nil, grerrors.Conflict.WithMsg(fmt.Sprintf(
			"resolution %v is %v, only approved resolutions can be filed",
			resolutionID, resolution.Status))
	}

	if err := s.tx.Model(resolution).Updates(map[string]interface{}{
		"status":   enum.ResolutionFiled,
		"filed_at": clock.Now(),
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return s.GetResolution(resolutionID)
}

func (s *workflowService) recordSignature(resolution *models.Resolution, shareholderID uuid.UUID, favor bool) error {
	sh := &models.Shareholder{}

	q := s.tx.Where("id = ?", shareholderID.String()).Find(sh)

	if q.RecordNotFound() {
		return grerrors.NotFound.WithMsg(
			fmt.Sprintf("shareholder not found for %v", shareholderID))
	}

	if q.Error != nil {
		return grerrors.InternalServerError.WithError(q.Error)
	}

	if !sh.Active() {
		return grerrors.Forbidden.WithMsg(fmt.Sprintf(
			"shareholder %v is %v and cannot vote", shareholderID, sh.Status))
	}

	signature := &models.ResolutionSignature{
		ResolutionID:  resolution.ID,
		ShareholderID: shareholderID.String(),
		Favor:         favor,
		SignedAt:      clock.Now(),
	}

	if err := s.tx.Create(signature).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			return grerrors.Conflict.WithMsg(fmt.Sprintf(
				"shareholder %v already voted on resolution %v",
				shareholderID, resolution.ID))
		}
		return grerrors.InternalServerError.WithError(err)
	}

	return nil
}

func (s *workflowService) votingPowerOf(shareholderID uuid.UUID) (decimal.Decimal, error) {
	holdings := []models.Holding{}

	q := s.tx.Where("shareholder_id = ?", shareholderID.String()).Find(&holdings)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return decimal.Zero, grerrors.InternalServerError.WithError(q.Error)
	}

	power := decimal.Zero

	for _, h := range holdings {
		if sc := s.classcache.Get(h.Class); sc != nil {
			power = power.Add(equity.VotingPower(h.SharesOutstanding, sc.VotingWeight))
		}
	}

	return power, nil
}

func (s *workflowService) totalVotingPower() (decimal.Decimal, error) {
	rows := []struct {
		Class             enum.ShareClass
		SharesOutstanding int64
	}{}

	q := s.tx.
		Model(&models.Holding{}).
		Select("class, sum(shares_outstanding) as shares_outstanding").
		Group("class").
		Scan(&rows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return decimal.Zero, grerrors.InternalServerError.WithError(q.Error)
	}

	total := decimal.Zero

	for _, row := range rows {
		if sc := s.classcache.Get(row.Class); sc != nil {
			total = total.Add(equity.VotingPower(row.SharesOutstanding, sc.VotingWeight))
		}
	}

	return total, nil
}
