package main

import (
	"os"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/gofrs/uuid"
)

// Early workflows were advanced before completed_by/completed_at were
// recorded on steps. This stamps the missing attribution from the
// governance minutes.
func main() {
	//supply workflow id
	workflowID := os.Args[1]

	//supply date
	date := os.Args[2]

	//supply the approver recorded in the minutes
	approver := os.Args[3]

	if _, err := uuid.FromString(workflowID); err != nil {
		panic(err)
	}

	tx := db.DB()

	wf := models.ApprovalWorkflow{}
	if err := tx.Where("id = ?", workflowID).First(&wf).Error; err != nil {
		panic(err)
	}

	q := tx.Exec(
		`UPDATE workflow_steps SET completed_by = ? WHERE workflow_id = ? AND status = ? AND completed_by IS NULL`,
		approver, wf.ID, enum.StepApproved)

	if q.Error != nil {
		panic(q.Error)
	}

	q = tx.Exec(
		`UPDATE workflow_steps SET completed_at = ? WHERE workflow_id = ? AND status = ? AND completed_at IS NULL`,
		date, wf.ID, enum.StepApproved)

	if q.Error != nil {
		panic(q.Error)
	}
}
