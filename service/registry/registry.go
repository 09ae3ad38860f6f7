package registry

import (
	"github.com/alpacahq/goregistry/service/accesskey"
	"github.com/alpacahq/goregistry/service/captable"
	"github.com/alpacahq/goregistry/service/classcache"
	"github.com/alpacahq/goregistry/service/holding"
	"github.com/alpacahq/goregistry/service/ledger"
	"github.com/alpacahq/goregistry/service/shareclass"
	"github.com/alpacahq/goregistry/service/shareholder"
	"github.com/alpacahq/goregistry/service/workflow"
)

type Registry interface {
	Shareholder() shareholder.ShareholderService
	ShareClass() shareclass.ShareClassService
	ClassCache() classcache.ClassCache
	Holding() holding.HoldingService
	Ledger() ledger.LedgerService
	CapTable() captable.CapTableService
	Workflow() workflow.WorkflowService
	AccessKey() accesskey.AccessKeyService
}
