// Package grreg wires the concrete services into the Registry the
// REST layer and workers consume. Construction is explicit, callers
// hold the registry they built and pass it down.
package grreg

import (
	"github.com/alpacahq/goregistry/service/accesskey"
	"github.com/alpacahq/goregistry/service/captable"
	"github.com/alpacahq/goregistry/service/classcache"
	"github.com/alpacahq/goregistry/service/holding"
	"github.com/alpacahq/goregistry/service/ledger"
	"github.com/alpacahq/goregistry/service/registry"
	"github.com/alpacahq/goregistry/service/shareclass"
	"github.com/alpacahq/goregistry/service/shareholder"
	"github.com/alpacahq/goregistry/service/workflow"
)

type grRegistry struct{}

func Services() registry.Registry {
	return &grRegistry{}
}

func (r *grRegistry) Shareholder() shareholder.ShareholderService {
	return shareholder.Service()
}

func (r *grRegistry) ShareClass() shareclass.ShareClassService {
	return shareclass.Service()
}

func (r *grRegistry) ClassCache() classcache.ClassCache {
	return classcache.GetClassCache()
}

func (r *grRegistry) Holding() holding.HoldingService {
	return holding.Service(r.ClassCache())
}

func (r *grRegistry) Ledger() ledger.LedgerService {
	return ledger.Service()
}

func (r *grRegistry) CapTable() captable.CapTableService {
	return captable.Service(r.ClassCache())
}

func (r *grRegistry) Workflow() workflow.WorkflowService {
	return workflow.Service(r.ClassCache())
}

func (r *grRegistry) AccessKey() accesskey.AccessKeyService {
	return accesskey.Service().WithCache()
}
