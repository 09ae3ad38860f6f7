package workflow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/service/classcache"
	"github.com/alpacahq/goregistry/service/policy"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// WorkflowService drives approval workflows through their step
// sequence and manages the resolutions they spawn. It never touches
// the share ledger - executing an approved action is the caller's
// responsibility, kept separate so the mutation moment is explicit.
type WorkflowService interface {
	Create(spec *policy.WorkflowSpec, requestor string, action enum.GovernanceAction, params interface{}) (*models.ApprovalWorkflow, error)
	Advance(id uuid.UUID, outcome enum.StepStatus, response, actor string) (*models.ApprovalWorkflow, error)
	Cancel(id uuid.UUID, reason, actor string) (*models.ApprovalWorkflow, error)
	GenerateResolution(workflowID uuid.UUID, kind enum.ResolutionKind, title string, description *string) (*models.Resolution, error)
	CastVote(resolutionID, shareholderID uuid.UUID, favor bool) (*models.Resolution, error)
	SignResolution(resolutionID, shareholderID uuid.UUID, favor bool) (*models.Resolution, error)
	FileResolution(resolutionID uuid.UUID) (*models.Resolution, error)
	Get(id uuid.UUID) (*models.ApprovalWorkflow, error)
	StepsFor(id uuid.UUID) ([]models.WorkflowStep, error)
	PendingFor(actor enum.StepActor) ([]models.ApprovalWorkflow, error)
	ByStatus(status enum.WorkflowStatus) ([]models.ApprovalWorkflow, error)
	Overdue(asOf time.Time) ([]models.ApprovalWorkflow, error)
	GetResolution(id uuid.UUID) (*models.Resolution, error)
	ResolutionsFor(workflowID uuid.UUID) ([]models.Resolution, error)
	WithTx(tx *gorm.DB) WorkflowService
}

type workflowService struct {
	WorkflowService
	tx         *gorm.DB
	classcache classcache.ClassCache
}

func Service(classcache classcache.ClassCache) WorkflowService {
	return &workflowService{classcache: classcache}
}

func (s *workflowService) WithTx(tx *gorm.DB) WorkflowService {
	s.tx = tx
	return s
}

func (s *workflowService) Create(
	spec *policy.WorkflowSpec,
	requestor string,
	action enum.GovernanceAction,
	params interface{}) (*models.ApprovalWorkflow, error) {

	if spec == nil || len(spec.Steps) == 0 {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("action %v generates no workflow", action))
	}

	var frozen json.RawMessage

	if params != nil {
		buf, err := json.Marshal(params)
		if err != nil {
			return nil, grerrors.InvalidRequestParam.WithError(err)
		}
		frozen = buf
	}

	now := clock.Now()
	deadline := now.AddDate(0, 0, int(spec.NominalDays))

	workflow := &models.ApprovalWorkflow{
		Action:    action,
		Requestor: requestor,
		Params:    frozen,
		Status:    enum.WorkflowPending,
		StepCount: uint(len(spec.Steps)),
		Deadline:  &deadline,
	}

	if err := s.tx.Create(workflow).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	for i, stepSpec := range spec.Steps {
		stepDeadline := now.AddDate(0, 0, int(stepSpec.DeadlineDays))

		step := models.WorkflowStep{
			WorkflowID:   workflow.ID,
			Sequence:     uint(i),
			Type:         stepSpec.Type,
			Actor:        stepSpec.Actor,
			Name:         stepSpec.Name,
			Required:     stepSpec.Required,
			Status:       enum.StepPending,
			DeadlineDays: stepSpec.DeadlineDays,
			Deadline:     &stepDeadline,
		}

		if err := s.tx.Create(&step).Error; err != nil {
			return nil, grerrors.InternalServerError.WithError(err)
		}

		workflow.Steps = append(workflow.Steps, step)
	}

	return workflow, nil
}

// Advance applies the outcome to the step at the cursor. Rejection is
// one-way: the workflow goes terminal and the remaining steps stay
// exactly as they were.
func (s *workflowService) Advance(
	id uuid.UUID,
	outcome enum.StepStatus,
	response, actor string) (*models.ApprovalWorkflow, error) {

	if outcome != enum.StepApproved && outcome != enum.StepRejected {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("step outcome must be approved or rejected, got %v", outcome))
	}

	workflow, err := s.lockWorkflow(id)
	if err != nil {
		return nil, err
	}

	if workflow.Terminal() {
		return nil, grerrors.WorkflowTerminal.WithMsg(fmt.Sprintf(
			"workflow %v is already %v", id, workflow.Status))
	}

	step := &models.WorkflowStep{}

	q := s.tx.Where(
		"workflow_id = ? AND sequence = ?",
		workflow.ID, workflow.CurrentStep).Find(step)

	if q.RecordNotFound() || q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(fmt.Errorf(
			"workflow %v has no step at cursor %v", id, workflow.CurrentStep))
	}

	now := clock.Now()

	if err := s.tx.Model(step).Updates(map[string]interface{}{
		"status":       outcome,
		"response":     response,
		"completed_by": actor,
		"completed_at": now,
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	updates := map[string]interface{}{}

	if outcome == enum.StepApproved {
		workflow.CurrentStep++
		updates["current_step"] = workflow.CurrentStep

		if workflow.CurrentStep >= workflow.StepCount {
			updates["status"] = enum.WorkflowApproved
			updates["approved_at"] = now
		}
	} else {
		updates["status"] = enum.WorkflowRejected
		updates["rejected_at"] = now
		updates["rejection_reason"] = response
	}

	if err := s.tx.Model(workflow).Updates(updates).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return s.Get(id)
}

// Cancel withdraws a pending workflow. Unlike rejection it carries no
// step outcome, the requestor simply abandoned the action.
func (s *workflowService) Cancel(id uuid.UUID, reason, actor string) (*models.ApprovalWorkflow, error) {
	workflow, err := s.lockWorkflow(id)
	if err != nil {
		return nil, err
	}

	if workflow.Terminal() {
		return nil, grerrors.WorkflowTerminal.WithMsg(fmt.Sprintf(
			"workflow %v is already %v", id, workflow.Status))
	}

	now := clock.Now()

	if err := s.tx.Model(workflow).Updates(map[string]interface{}{
		"status":           enum.WorkflowCancelled,
		"rejected_at":      now,
		"rejection_reason": fmt.Sprintf("cancelled by %v: %v", actor, reason),
	}).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return s.Get(id)
}

func (s *workflowService) GenerateResolution(
	workflowID uuid.UUID,
	kind enum.ResolutionKind,
	title string,
	description *string) (*models.Resolution, error) {

	if !enum.ValidResolutionKind(kind) {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			fmt.Sprintf("invalid resolution kind %v", kind))
	}

	if title == "" {
		return nil, grerrors.InvalidRequestParam.WithMsg("title is required")
	}

	workflow, err := s.Get(workflowID)
	if err != nil {
		return nil, err
	}

	quorum, threshold := thresholdsFor(kind)

	resolution := &models.Resolution{
		WorkflowID:           workflow.ID,
		Kind:                 kind,
		Status:               enum.ResolutionDraft,
		Title:                title,
		Description:          description,
		QuorumPct:            quorum,
		ApprovalThresholdPct: threshold,
	}

	if err := s.tx.Create(resolution).Error; err != nil {
		return nil, grerrors.InternalServerError.WithError(err)
	}

	return resolution, nil
}

func (s *workflowService) Get(id uuid.UUID) (*models.ApprovalWorkflow, error) {
	workflow := &models.ApprovalWorkflow{}

	q := s.tx.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence asc")
		}).
		Where("id = ?", id.String()).
		Find(workflow)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("workflow not found for %v", id))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return workflow, nil
}

func (s *workflowService) StepsFor(id uuid.UUID) ([]models.WorkflowStep, error) {
	steps := []models.WorkflowStep{}

	q := s.tx.
		Where("workflow_id = ?", id.String()).
		Order("sequence asc").
		Find(&steps)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return steps, nil
}

// PendingFor lists pending workflows whose cursor step waits on the
// given actor.
func (s *workflowService) PendingFor(actor enum.StepActor) ([]models.ApprovalWorkflow, error) {
	workflows := []models.ApprovalWorkflow{}

	q := s.tx.
		Joins(`JOIN workflow_steps ON
			workflow_steps.workflow_id = approval_workflows.id AND
			workflow_steps.sequence = approval_workflows.current_step`).
		Where("approval_workflows.status = ? AND workflow_steps.actor = ?",
			enum.WorkflowPending, actor).
		Order("approval_workflows.created_at asc").
		Find(&workflows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return workflows, nil
}

func (s *workflowService) ByStatus(status enum.WorkflowStatus) ([]models.ApprovalWorkflow, error) {
	workflows := []models.ApprovalWorkflow{}

	q := s.tx.
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&workflows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return workflows, nil
}

// Overdue lists pending workflows past their own deadline or whose
// cursor step blew its deadline.
func (s *workflowService) Overdue(asOf time.Time) ([]models.ApprovalWorkflow, error) {
	workflows := []models.ApprovalWorkflow{}

	q := s.tx.
		Joins(`JOIN workflow_steps ON
			workflow_steps.workflow_id = approval_workflows.id AND
			workflow_steps.sequence = approval_workflows.current_step`).
		Where(`approval_workflows.status = ? AND
			(approval_workflows.deadline < ? OR workflow_steps.deadline < ?)`,
			enum.WorkflowPending, asOf, asOf).
		Order("approval_workflows.deadline asc").
		Find(&workflows)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return workflows, nil
}

func (s *workflowService) GetResolution(id uuid.UUID) (*models.Resolution, error) {
	resolution := &models.Resolution{}

	q := s.tx.
		Preload("Signatures").
		Where("id = ?", id.String()).
		Find(resolution)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("resolution not found for %v", id))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return resolution, nil
}

func (s *workflowService) ResolutionsFor(workflowID uuid.UUID) ([]models.Resolution, error) {
	resolutions := []models.Resolution{}

	q := s.tx.
		Where("workflow_id = ?", workflowID.String()).
		Order("created_at asc").
		Find(&resolutions)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return resolutions, nil
}

func (s *workflowService) lockWorkflow(id uuid.UUID) (*models.ApprovalWorkflow, error) {
	workflow := &models.ApprovalWorkflow{}

	q := s.tx.
		Set("gorm:query_option", db.ForUpdate).
		Where("id = ?", id.String()).
		Find(workflow)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("workflow not found for %v", id))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return workflow, nil
}

func (s *workflowService) lockResolution(id uuid.UUID) (*models.Resolution, error) {
	resolution := &models.Resolution{}

	q := s.tx.
		Set("gorm:query_option", db.ForUpdate).
		Where("id = ?", id.String()).
		Find(resolution)

	if q.RecordNotFound() {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("resolution not found for %v", id))
	}

	if q.Error != nil {
		return nil, grerrors.InternalServerError.WithError(q.Error)
	}

	return resolution, nil
}
