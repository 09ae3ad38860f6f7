package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"github.com/vmihailenco/msgpack"
)

type ApiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return e.Message
}

type RestClient struct {
	apiKeyId     string
	apiSecretKey string
	baseUrl      string
	client       *fasthttp.Client

	RequestHeaders map[string]string
	setHeaderFunc  func(req *fasthttp.Request)
}

func NewRestClient(keyId, secretKey string) *RestClient {
	c := &RestClient{
		apiKeyId:     keyId,
		apiSecretKey: secretKey,
		baseUrl:      "https://registry.alpaca.markets",
		client:       &fasthttp.Client{},
	}
	c.setHeaderFunc = c.setHeader
	return c
}

func (c *RestClient) SetBaseURL(url string) *RestClient {
	c.baseUrl = url
	return c
}

type Shareholder struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Status      string    `json:"status"`
	EntityType  string    `json:"entity_type"`
	LegalName   string    `json:"legal_name"`
	Email       *string   `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	City        *string   `json:"city"`
	State       *string   `json:"state"`
	PostalCode  *string   `json:"postal_code"`
	Country     *string   `json:"country"`
	BankName    *string   `json:"bank_name"`
}

type Holding struct {
	ID                string          `json:"id"`
	ShareholderID     string          `json:"shareholder_id"`
	Class             string          `json:"class"`
	SharesIssued      int64           `json:"shares_issued"`
	SharesOutstanding int64           `json:"shares_outstanding"`
	SharesReserved    int64           `json:"shares_reserved"`
	ConsiderationPaid decimal.Decimal `json:"consideration_paid"`
	AcquiredAt        time.Time       `json:"acquired_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type ShareClass struct {
	Class              string           `json:"class"`
	Name               string           `json:"name"`
	VotingWeight       decimal.Decimal  `json:"voting_weight"`
	Convertible        bool             `json:"convertible"`
	ConversionRatio    *decimal.Decimal `json:"conversion_ratio"`
	LiquidationPref    decimal.Decimal  `json:"liquidation_preference"`
	DividendRate       *decimal.Decimal `json:"dividend_rate"`
	AntiDilution       string           `json:"anti_dilution"`
	BoardSeats         uint             `json:"board_seats"`
	TransferRestricted bool             `json:"transfer_restricted"`
	TotalAuthorized    int64            `json:"total_authorized"`
}

type LedgerEntry struct {
	ID                 string           `json:"id"`
	CreatedAt          time.Time        `json:"created_at"`
	Sequence           uint             `json:"sequence"`
	Kind               string           `json:"kind"`
	FromHolderID       *string          `json:"from_holder_id"`
	FromClass          *string          `json:"from_class"`
	FromShares         *int64           `json:"from_shares"`
	ToHolderID         *string          `json:"to_holder_id"`
	ToClass            *string          `json:"to_class"`
	ToShares           *int64           `json:"to_shares"`
	PricePerShare      *decimal.Decimal `json:"price_per_share"`
	TotalConsideration *decimal.Decimal `json:"total_consideration"`
	Actor              string           `json:"actor"`
	WorkflowID         *string          `json:"workflow_id"`
	ResolutionID       *string          `json:"resolution_id"`
	TransactedAt       time.Time        `json:"transacted_at"`
}

type IssuanceResult struct {
	Holding *Holding     `json:"holding"`
	Entry   *LedgerEntry `json:"entry"`
}

type CapTableHolder struct {
	ShareholderID     string           `json:"shareholder_id"`
	LegalName         string           `json:"legal_name"`
	SharesOutstanding int64            `json:"shares_outstanding"`
	OwnershipPct      decimal.Decimal  `json:"ownership_pct"`
	VotingPower       decimal.Decimal  `json:"voting_power"`
	VotingPct         decimal.Decimal  `json:"voting_pct"`
	ByClass           map[string]int64 `json:"by_class"`
}

type CapTableClass struct {
	Class             string `json:"class"`
	SharesIssued      int64  `json:"shares_issued"`
	SharesOutstanding int64  `json:"shares_outstanding"`
	SharesReserved    int64  `json:"shares_reserved"`
	TotalAuthorized   int64  `json:"total_authorized"`
	HolderCount       uint   `json:"holder_count"`
}

type CapTable struct {
	AsOf             time.Time        `json:"as_of"`
	TotalIssued      int64            `json:"total_issued"`
	TotalOutstanding int64            `json:"total_outstanding"`
	Classes          []CapTableClass  `json:"classes"`
	Holders          []CapTableHolder `json:"holders"`
}

type Snapshot struct {
	ID               string          `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	TakenAt          time.Time       `json:"taken_at"`
	Notes            *string         `json:"notes"`
	Actor            string          `json:"actor"`
	TotalIssued      int64           `json:"total_issued"`
	TotalOutstanding int64           `json:"total_outstanding"`
	HolderCount      uint            `json:"holder_count"`
	Payload          json.RawMessage `json:"payload"`
}

type WorkflowStep struct {
	ID           uint       `json:"id"`
	WorkflowID   string     `json:"workflow_id"`
	Sequence     uint       `json:"sequence"`
	Type         string     `json:"type"`
	Actor        string     `json:"actor"`
	Name         string     `json:"name"`
	Required     bool       `json:"required"`
	Status       string     `json:"status"`
	DeadlineDays uint       `json:"deadline_days"`
	Deadline     *time.Time `json:"deadline"`
	Response     *string    `json:"response"`
	CompletedBy  *string    `json:"completed_by"`
	CompletedAt  *time.Time `json:"completed_at"`
}

type Workflow struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Action          string          `json:"action"`
	Requestor       string          `json:"requestor"`
	Params          json.RawMessage `json:"params"`
	Status          string          `json:"status"`
	CurrentStep     uint            `json:"current_step"`
	StepCount       uint            `json:"step_count"`
	Deadline        *time.Time      `json:"deadline"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	RejectionReason *string         `json:"rejection_reason"`
	Steps           []WorkflowStep  `json:"steps"`
}

type RequiredApproval struct {
	Type         string           `json:"type"`
	ThresholdPct *decimal.Decimal `json:"threshold_pct,omitempty"`
}

type Notice struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	LeadDays  int    `json:"lead_days"`
	Required  bool   `json:"required"`
}

type Evaluation struct {
	Action    string               `json:"action"`
	Allowed   bool                 `json:"allowed"`
	Approvals []RequiredApproval   `json:"approvals"`
	Blockers  []string             `json:"blockers"`
	Warnings  []string             `json:"warnings"`
	Notices   []Notice             `json:"notices"`
	Deadlines map[string]time.Time `json:"deadlines"`
}

type CreateWorkflowResult struct {
	Workflow   *Workflow   `json:"workflow"`
	Evaluation *Evaluation `json:"evaluation"`
}

type Resolution struct {
	ID                   string          `json:"id"`
	CreatedAt            time.Time       `json:"created_at"`
	WorkflowID           string          `json:"workflow_id"`
	Kind                 string          `json:"kind"`
	Status               string          `json:"status"`
	Title                string          `json:"title"`
	Description          *string         `json:"description"`
	QuorumPct            decimal.Decimal `json:"quorum_pct"`
	ApprovalThresholdPct decimal.Decimal `json:"approval_threshold_pct"`
	VotesFor             decimal.Decimal `json:"votes_for"`
	VotesAgainst         decimal.Decimal `json:"votes_against"`
	VotesAbstain         decimal.Decimal `json:"votes_abstain"`
	PassedAt             *time.Time      `json:"passed_at"`
	FiledAt              *time.Time      `json:"filed_at"`
}

type Clock struct {
	Timestamp       time.Time `json:"timestamp"`
	IsBusinessDay   bool      `json:"is_business_day"`
	NextBusinessDay time.Time `json:"next_business_day"`
}

type Health struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Mode     string `json:"mode"`
	Database string `json:"database"`
}

type PaginationMeta struct {
	TotalCount int64 `json:"total_count"`
}

type ShareholderList struct {
	Shareholders []*Shareholder `json:"shareholders"`
	Meta         PaginationMeta `json:"meta"`
}

func (c *RestClient) GetStatus() (res *Health, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/status", c.baseUrl)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) GetClock() (res *Clock, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/clock", c.baseUrl)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) CreateShareholder(req entities.CreateShareholderRequest) (res *Shareholder, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/shareholders", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) GetShareholder(shareholderID string) (res *Shareholder, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/shareholders/%v", c.baseUrl, shareholderID)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) ListShareholders(status string) (res *ShareholderList, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/shareholders", c.baseUrl)
	if status != "" {
		url += fmt.Sprintf("?status=%s", status)
	}
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) PatchShareholder(shareholderID string, patches map[string]interface{}) (res *Shareholder, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/shareholders/%v", c.baseUrl, shareholderID)
	_, err = c.call(url, "PATCH", patches, &res)
	return
}

func (c *RestClient) DeleteShareholder(shareholderID string) (err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/shareholders/%v", c.baseUrl, shareholderID)
	_, err = c.call(url, "DELETE", nil, nil)
	return
}

func (c *RestClient) ListHoldings(shareholderID string) (res []*Holding, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/shareholders/%v/holdings", c.baseUrl, shareholderID)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) ListHoldingsByClass(class string) (res []*Holding, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/holdings", c.baseUrl)
	if class != "" {
		url += fmt.Sprintf("?class=%s", class)
	}
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) ListEntries(shareholderID string) (res []*LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/shareholders/%v/entries", c.baseUrl, shareholderID)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) ListClasses() (res []*ShareClass, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/classes", c.baseUrl)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) GetClass(class string) (res *ShareClass, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/classes/%s", c.baseUrl, class)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) IssueShares(req entities.IssuanceRequest) (res *IssuanceResult, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/issuances", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) BonusIssue(req entities.BonusIssueRequest) (res *IssuanceResult, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/bonus_issues", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) TransferShares(req entities.TransferRequest) (res *LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/transfers", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) ConvertShares(req entities.ConversionRequest) (res *LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/conversions", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) RepurchaseShares(req entities.RepurchaseRequest) (res *LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/repurchases", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) RecordDividend(req entities.DividendRequest) (res *LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/dividends", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) CancelShares(req entities.CancellationRequest) (res *LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/cancellations", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) SplitShares(req entities.SplitRequest) (res []*LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/splits", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) ListLedger(limit int) (res []*LedgerEntry, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/ledger/entries", c.baseUrl)
	if limit > 0 {
		url += fmt.Sprintf("?limit=%d", limit)
	}
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) GetCapTable() (res *CapTable, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/captable", c.baseUrl)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) GenerateSnapshot(notes *string) (res *Snapshot, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/captable/snapshots", c.baseUrl)
	params := map[string]interface{}{}
	if notes != nil {
		params["notes"] = *notes
	}
	_, err = c.call(url, "POST", params, &res)
	return
}

func (c *RestClient) ListSnapshots() (res []*Snapshot, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/captable/snapshots", c.baseUrl)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) GetSnapshot(snapshotID string) (res *Snapshot, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/captable/snapshots/%v", c.baseUrl, snapshotID)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) Evaluate(req entities.EvaluationRequest) (res *Evaluation, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/governance/evaluations", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) CreateWorkflow(req entities.CreateWorkflowRequest) (res *CreateWorkflowResult, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/workflows", c.baseUrl)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) GetWorkflow(workflowID string) (res *Workflow, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/workflows/%v", c.baseUrl, workflowID)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) ListWorkflows(status string) (res []*Workflow, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/workflows", c.baseUrl)
	if status != "" {
		url += fmt.Sprintf("?status=%s", status)
	}
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) AdvanceWorkflow(workflowID string, req entities.AdvanceStepRequest) (res *Workflow, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/workflows/%v/advance", c.baseUrl, workflowID)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) CancelWorkflow(workflowID, reason string) (res *Workflow, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/workflows/%v/cancel", c.baseUrl, workflowID)
	req := entities.CancelWorkflowRequest{Reason: reason}
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) GenerateResolution(workflowID string, req entities.GenerateResolutionRequest) (res *Resolution, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/workflows/%v/resolutions", c.baseUrl, workflowID)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) GetResolution(resolutionID string) (res *Resolution, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/resolutions/%v", c.baseUrl, resolutionID)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *RestClient) Vote(resolutionID string, req entities.VoteRequest) (res *Resolution, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/resolutions/%v/votes", c.baseUrl, resolutionID)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) Sign(resolutionID string, req entities.SignatureRequest) (res *Resolution, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/resolutions/%v/signatures", c.baseUrl, resolutionID)
	_, err = c.call(url, "POST", req, &res)
	return
}

func (c *RestClient) FileResolution(resolutionID string) (res *Resolution, err error) {
	url := fmt.Sprintf("%s/goregistry/api/v1/resolutions/%v/file", c.baseUrl, resolutionID)
	_, err = c.call(url, "POST", nil, &res)
	return
}

func (c *RestClient) setHeader(req *fasthttp.Request) {
	req.Header.Add("APCA-API-KEY-ID", c.apiKeyId)
	req.Header.Add("APCA-API-SECRET-KEY", c.apiSecretKey)
	// Additional headers to add (ie. Content-Type) which can be set per request/test
	for k, v := range c.RequestHeaders {
		req.Header.Add(k, v)
	}
}

func (c *RestClient) call(uri, method string, reqBody, resBody interface{}) (resp *fasthttp.Response, err error) {
	req := fasthttp.AcquireRequest()
	c.setHeaderFunc(req)
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	contentType := strings.ToLower(string(req.Header.ContentType()))
	if method != "GET" && reqBody != nil {
		switch contentType {
		case api.MIMEApplicationMsgpack, api.MIMEApplicationMsgpackCharsetUTF8:
			var reqBytes bytes.Buffer
			enc := msgpack.NewEncoder(&reqBytes)
			// Using json tags on structs
			enc.UseJSONTag(true)
			err := enc.Encode(reqBody)

			if err != nil {
				log.Printf(
					"Failed to MsgPack marshal for %v (%v): %v - Error: %v\n",
					uri,
					method,
					reqBody,
					err,
				)
				return nil, err
			}
			req.SetBody(reqBytes.Bytes())
		// case api.MIMEApplicationJSON, api.MIMEApplicationJSONCharsetUTF8:
		default:
			reqBytes, err := json.Marshal(reqBody)
			if err != nil {
				log.Printf(
					"Failed to JSON marshal for %v (%v): %v - Error: %v\n",
					uri,
					method,
					reqBody,
					err,
				)
				return nil, err
			}
			req.SetBody(reqBytes)
		}
	}
	resp = fasthttp.AcquireResponse()
	c.client.Do(req, resp)
	resBytes, err := getResponseBody(resp)
	if resp.StatusCode() >= fasthttp.StatusMultipleChoices {
		apiErr := ApiError{}

		switch strings.ToLower(string(resp.Header.ContentType())) {
		case api.MIMEApplicationMsgpack, api.MIMEApplicationMsgpackCharsetUTF8:
			dec := msgpack.NewDecoder(bytes.NewReader(resBytes))
			// Using json tags on structs
			dec.UseJSONTag(true)
			err = dec.Decode(&apiErr)
		// case api.MIMEApplicationJSON, api.MIMEApplicationJSONCharsetUTF8:
		default:
			err = json.Unmarshal(resBytes, &apiErr)
		}

		if err == nil {
			err = &apiErr
			return
		} else {
			err = fmt.Errorf(
				"failed to %v %v - Error: %v - Status: %d, Response: %v",
				method,
				uri,
				err,
				resp.StatusCode(),
				string(resBytes),
			)
			log.Printf("%v\n", err.Error())
		}
		return
	}

	if resBody != nil {
		switch strings.ToLower(string(resp.Header.ContentType())) {
		case api.MIMEApplicationMsgpack, api.MIMEApplicationMsgpackCharsetUTF8:
			dec := msgpack.NewDecoder(bytes.NewReader(resBytes))
			// Using json tags on structs
			dec.UseJSONTag(true)
			err = dec.Decode(&resBody)
		// case api.MIMEApplicationJSON, api.MIMEApplicationJSONCharsetUTF8:
		default:
			err = json.Unmarshal(resBytes, &resBody)
		}

		if err != nil {
			log.Printf(
				"Failed to unmarshal response from %v - Error: %v - Response: %v\n",
				uri,
				err,
				string(resBytes),
			)
			return
		}
	}

	return resp, err
}

func getResponseBody(resp *fasthttp.Response) ([]byte, error) {
	switch string(resp.Header.Peek("Content-encoding")) {
	case "gzip":
		body, err := resp.BodyGunzip()
		if err != nil {
			return nil, err
		}
		return body, nil
	case "inflate":
		body, err := resp.BodyInflate()
		if err != nil {
			return nil, err
		}
		return body, nil
	default:
		return resp.Body(), nil
	}
}
