package policy

import "github.com/alpacahq/goregistry/models/enum"

// Step tables keyed by outcome shape. Deadline days are offsets from
// workflow creation; the sequences are fixed so two evaluations of the
// same action always produce the same workflow.
var (
	standardSteps = []StepSpec{
		{Type: enum.StepApproval, Actor: enum.ActorBoard, Name: "board approval", Required: true, DeadlineDays: 7},
		{Type: enum.StepDocument, Actor: enum.ActorSystem, Name: "record and file", Required: true, DeadlineDays: 10},
	}

	specialSteps = []StepSpec{
		{Type: enum.StepNotice, Actor: enum.ActorSystem, Name: "shareholder meeting notice", Required: true, DeadlineDays: 5},
		{Type: enum.StepApproval, Actor: enum.ActorBoard, Name: "board approval", Required: true, DeadlineDays: 12},
		{Type: enum.StepWait, Actor: enum.ActorSystem, Name: "notice period", Required: true, DeadlineDays: 35},
		{Type: enum.StepApproval, Actor: enum.ActorShareholders, Name: "special resolution vote", Required: true, DeadlineDays: 38},
		{Type: enum.StepDocument, Actor: enum.ActorSystem, Name: "file resolution", Required: true, DeadlineDays: 40},
	}

	conversionSteps = []StepSpec{
		{Type: enum.StepApproval, Actor: enum.ActorBoard, Name: "approve conversion", Required: true, DeadlineDays: 2},
		{Type: enum.StepDocument, Actor: enum.ActorSystem, Name: "generate share certificate", Required: true, DeadlineDays: 4},
		{Type: enum.StepNotice, Actor: enum.ActorSystem, Name: "conversion notice", Required: false, DeadlineDays: 5},
	}

	mergerSteps = []StepSpec{
		{Type: enum.StepApproval, Actor: enum.ActorBoard, Name: "board approval", Required: true, DeadlineDays: 10},
		{Type: enum.StepNotice, Actor: enum.ActorSystem, Name: "shareholder meeting notice", Required: true, DeadlineDays: 15},
		{Type: enum.StepApproval, Actor: enum.ActorShareholders, Name: "special resolution vote", Required: true, DeadlineDays: 45},
		{Type: enum.StepDocument, Actor: enum.ActorSpecificParty, Name: "execute merger agreement", Required: true, DeadlineDays: 55},
		{Type: enum.StepDocument, Actor: enum.ActorSystem, Name: "file and record", Required: true, DeadlineDays: 60},
	}
)

func buildWorkflow(specialPresent bool) *WorkflowSpec {
	if specialPresent {
		return &WorkflowSpec{Steps: cloneSteps(specialSteps), NominalDays: 40}
	}
	return &WorkflowSpec{Steps: cloneSteps(standardSteps), NominalDays: 10}
}

func conversionWorkflow() *WorkflowSpec {
	return &WorkflowSpec{Steps: cloneSteps(conversionSteps), NominalDays: 5}
}

func mergerWorkflow() *WorkflowSpec {
	return &WorkflowSpec{Steps: cloneSteps(mergerSteps), NominalDays: 60}
}

func cloneSteps(steps []StepSpec) []StepSpec {
	out := make([]StepSpec, len(steps))
	copy(out, steps)
	return out
}
