// +build integration

package suite

import (
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/integration/apiclient"
	"github.com/alpacahq/goregistry/integration/testop"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/alpacahq/goregistry/rest/api/controller/entities"
	"github.com/alpacahq/goregistry/utils/address"
	"github.com/alpacahq/goregistry/utils/initializer"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TestSuite struct {
	suite.Suite
	apiKey testop.ApiKey
}

func TestIt(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

func (s *TestSuite) SetupSuite() {
	initializer.Initialize()

	// get the api key seeded by the setup job
	if err := db.DB().First(&s.apiKey).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
	log.Info("Start", "time", clock.Now())
}

func (s *TestSuite) TearDownSuite() {

}

func (s *TestSuite) TestREST() {
	start := clock.Now()
	client := apiclient.NewRestClient(s.apiKey.KeyID, s.apiKey.SecretKey)
	client.SetBaseURL("http://nginxsvc")

	// Get Status
	{
		health, err := client.GetStatus()
		assert.Nil(s.T(), err)
		require.NotNil(s.T(), health)
		assert.Equal(s.T(), "ok", health.Status)
		assert.Equal(s.T(), "ok", health.Database)
	}

	// Get Clock
	{
		reading, err := client.GetClock()
		assert.Nil(s.T(), err)
		require.NotNil(s.T(), reading)
		assert.False(s.T(), reading.NextBusinessDay.IsZero())
	}

	// Get Clock (msgpack)
	{
		client.RequestHeaders = map[string]string{
			"Content-Type": api.MIMEApplicationMsgpack,
		}
		reading, err := client.GetClock()
		assert.Nil(s.T(), err)
		assert.NotNil(s.T(), reading)
		client.RequestHeaders["Content-Type"] = api.MIMEApplicationJSON
	}

	// unauthorized case
	{
		client := apiclient.NewRestClient("invalid", "invalid")
		client.SetBaseURL("http://nginxsvc")
		table, err := client.GetCapTable()
		assert.NotNil(s.T(), err)
		assert.Equal(s.T(), err.(*apiclient.ApiError).Code, 40110000)
		assert.Nil(s.T(), table)
	}

	// register keys cannot reach full-permission routes
	{
		_, err := client.SplitShares(entities.SplitRequest{
			Class:            enum.Common,
			RatioNumerator:   2,
			RatioDenominator: 1,
		})
		require.NotNil(s.T(), err)
		assert.Equal(s.T(), 40110000, err.(*apiclient.ApiError).Code)
	}

	// Share classes
	{
		classes, err := client.ListClasses()
		assert.Nil(s.T(), err)
		assert.Len(s.T(), classes, 5)

		common, err := client.GetClass(string(enum.Common))
		assert.Nil(s.T(), err)
		assert.Equal(s.T(), "Common Stock", common.Name)
		assert.EqualValues(s.T(), 10000000, common.TotalAuthorized)
		assert.True(s.T(), common.VotingWeight.Equal(decimal.New(1, 0)))

		founder, err := client.GetClass(string(enum.Founder))
		assert.Nil(s.T(), err)
		assert.True(s.T(), founder.TransferRestricted)
		assert.True(s.T(), founder.VotingWeight.Equal(decimal.New(10, 0)))

		_, err = client.GetClass("SERIES_Z")
		assert.NotNil(s.T(), err)
	}

	// the cap table is empty until the register test issues shares
	{
		table, err := client.GetCapTable()
		assert.Nil(s.T(), err)
		require.NotNil(s.T(), table)
		assert.EqualValues(s.T(), 0, table.TotalOutstanding)
		assert.Len(s.T(), table.Classes, 0)
	}

	s.T().Logf("TestREST complete [%v]", clock.Now().Sub(start))
}

func (s *TestSuite) TestRegister() {
	start := clock.Now()
	client := apiclient.NewRestClient(s.apiKey.KeyID, s.apiKey.SecretKey)
	client.SetBaseURL("http://nginxsvc")
	nc := s.internalClient()

	// connect socket for updates
	c := getStreamSocket()
	defer gracefulClose(c)

	// authenticate the connection
	authRequest := map[string]interface{}{
		"action": "authenticate",
		"data": map[string]interface{}{
			"key_id":     s.apiKey.KeyID,
			"secret_key": s.apiKey.SecretKey,
		},
	}
	err := c.WriteJSON(authRequest)
	assert.Nil(s.T(), err)
	streamMsg := StreamMsg{}
	c.SetReadDeadline(time.Now().Add(time.Minute))
	err = c.ReadJSON(&streamMsg)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), "authorized", streamMsg.Data["status"])

	subscribeRequest := map[string]interface{}{
		"action": "listen",
		"data": map[string]interface{}{
			"streams": []interface{}{
				"ledger_updates",
				"workflow_updates",
			},
		},
	}

	// listen to ledger and workflow updates
	err = c.WriteJSON(subscribeRequest)
	assert.Nil(s.T(), err)
	streamMsg = StreamMsg{}
	c.SetReadDeadline(time.Now().Add(time.Minute))
	err = c.ReadJSON(&streamMsg)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), "listening", streamMsg.Stream)
	assert.Equal(
		s.T(),
		map[string]interface{}{"streams": []interface{}{"ledger_updates", "workflow_updates"}},
		streamMsg.Data,
	)

	// register the holders
	founderEmail := "founder-test@alpaca.markets"
	founder, err := nc.CreateShareholder(entities.CreateShareholderRequest{
		LegalName:     "Integration Founder",
		Email:         &founderEmail,
		EntityType:    enum.Individual,
		StreetAddress: address.Address{"20 N San Mateo Dr"},
	})
	require.Nil(s.T(), err)
	require.NotNil(s.T(), founder)
	assert.Equal(s.T(), "ACTIVE", founder.Status)

	investorEmail := "investor-test@alpaca.markets"
	investor, err := nc.CreateShareholder(entities.CreateShareholderRequest{
		LegalName:  "Integration Capital LP",
		Email:      &investorEmail,
		EntityType: enum.Fund,
	})
	require.Nil(s.T(), err)
	require.NotNil(s.T(), investor)

	// the first issuance into an empty register is full dilution, so
	// the policy demands a special resolution on top of the board
	issuanceParams := json.RawMessage(fmt.Sprintf(
		`{"holder":%q,"class":"COMMON","new_shares":1000000,"price_per_share":"0.01"}`,
		founder.ID))

	eval, err := client.Evaluate(entities.EvaluationRequest{
		Action: enum.ShareIssuance,
		Params: issuanceParams,
	})
	require.Nil(s.T(), err)
	assert.True(s.T(), eval.Allowed)
	approvalTypes := []string{}
	for _, a := range eval.Approvals {
		approvalTypes = append(approvalTypes, a.Type)
	}
	assert.Contains(s.T(), approvalTypes, "board_approval")
	assert.Contains(s.T(), approvalTypes, "special_resolution")
	require.Len(s.T(), eval.Notices, 1)
	assert.Equal(s.T(), "shareholders", eval.Notices[0].Recipient)
	assert.Contains(s.T(), eval.Deadlines, "shareholder_meeting")

	// issuing without an approved workflow is refused
	issueReq := entities.IssuanceRequest{
		ShareholderID: founder.ID,
		Class:         enum.Common,
		Shares:        1000000,
		PricePerShare: decimal.NewFromFloat(0.01),
	}
	_, err = client.IssueShares(issueReq)
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), 40310000, err.(*apiclient.ApiError).Code)

	// create the workflow and walk it to approval
	created, err := client.CreateWorkflow(entities.CreateWorkflowRequest{
		Action: enum.ShareIssuance,
		Params: issuanceParams,
	})
	require.Nil(s.T(), err)
	wf := created.Workflow
	require.NotNil(s.T(), wf)
	require.NotNil(s.T(), created.Evaluation)
	assert.Equal(s.T(), "pending", wf.Status)
	assert.EqualValues(s.T(), 0, wf.CurrentStep)
	assert.EqualValues(s.T(), 5, wf.StepCount)
	require.Len(s.T(), wf.Steps, 5)
	assert.Equal(s.T(), "shareholder meeting notice", wf.Steps[0].Name)
	assert.Equal(s.T(), "special resolution vote", wf.Steps[3].Name)

	for range wf.Steps {
		wf, err = nc.AdvanceWorkflow(wf.ID, entities.AdvanceStepRequest{
			Outcome:  enum.StepApproved,
			Response: "approved",
		})
		require.Nil(s.T(), err)
	}
	assert.Equal(s.T(), "approved", wf.Status)
	assert.NotNil(s.T(), wf.ApprovedAt)
	assert.EqualValues(s.T(), 5, wf.CurrentStep)

	// a settled workflow cannot advance again
	_, err = nc.AdvanceWorkflow(wf.ID, entities.AdvanceStepRequest{
		Outcome: enum.StepApproved,
	})
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), 40910001, err.(*apiclient.ApiError).Code)

	// now the issuance executes against the approved workflow
	issueReq.WorkflowID = &wf.ID
	issued, err := client.IssueShares(issueReq)
	require.Nil(s.T(), err)
	require.NotNil(s.T(), issued.Holding)
	require.NotNil(s.T(), issued.Entry)
	assert.EqualValues(s.T(), 1000000, issued.Holding.SharesOutstanding)
	assert.Equal(s.T(), "ISSUANCE", issued.Entry.Kind)
	require.NotNil(s.T(), issued.Entry.WorkflowID)
	assert.Equal(s.T(), wf.ID, *issued.Entry.WorkflowID)

	// a sub-dilutive preferred round only needs the short path
	prefParams := json.RawMessage(fmt.Sprintf(
		`{"holder":%q,"class":"PREFERRED_A","new_shares":100000,"price_per_share":"2.5"}`,
		investor.ID))

	created, err = client.CreateWorkflow(entities.CreateWorkflowRequest{
		Action: enum.ShareIssuance,
		Params: prefParams,
	})
	require.Nil(s.T(), err)
	wf2 := created.Workflow
	require.Len(s.T(), wf2.Steps, 2)
	assert.Equal(s.T(), "board approval", wf2.Steps[0].Name)

	for range wf2.Steps {
		wf2, err = nc.AdvanceWorkflow(wf2.ID, entities.AdvanceStepRequest{
			Outcome:  enum.StepApproved,
			Response: "approved",
		})
		require.Nil(s.T(), err)
	}
	require.Equal(s.T(), "approved", wf2.Status)

	_, err = client.IssueShares(entities.IssuanceRequest{
		ShareholderID: investor.ID,
		Class:         enum.PreferredA,
		Shares:        100000,
		PricePerShare: decimal.NewFromFloat(2.5),
		Authorization: entities.Authorization{WorkflowID: &wf2.ID},
	})
	require.Nil(s.T(), err)

	// founder stock never moves between holders
	_, err = client.TransferShares(entities.TransferRequest{
		FromShareholderID: founder.ID,
		ToShareholderID:   investor.ID,
		Class:             enum.Founder,
		Shares:            100,
		PricePerShare:     decimal.New(1, 0),
	})
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), 40310000, err.(*apiclient.ApiError).Code)
	assert.Contains(s.T(), err.(*apiclient.ApiError).Message, "transfer-restricted")

	// a small common transfer goes through the short workflow
	transferParams := json.RawMessage(fmt.Sprintf(
		`{"from_holder":%q,"to_holder":%q,"class":"COMMON","shares":50000,"price_per_share":"3"}`,
		founder.ID, investor.ID))

	created, err = client.CreateWorkflow(entities.CreateWorkflowRequest{
		Action: enum.ShareTransfer,
		Params: transferParams,
	})
	require.Nil(s.T(), err)
	wf3 := created.Workflow
	require.Len(s.T(), wf3.Steps, 2)

	for range wf3.Steps {
		wf3, err = nc.AdvanceWorkflow(wf3.ID, entities.AdvanceStepRequest{
			Outcome:  enum.StepApproved,
			Response: "approved",
		})
		require.Nil(s.T(), err)
	}

	transferred, err := client.TransferShares(entities.TransferRequest{
		FromShareholderID: founder.ID,
		ToShareholderID:   investor.ID,
		Class:             enum.Common,
		Shares:            50000,
		PricePerShare:     decimal.New(3, 0),
		Authorization:     entities.Authorization{WorkflowID: &wf3.ID},
	})
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "TRANSFER", transferred.Kind)
	require.NotNil(s.T(), transferred.TotalConsideration)
	assert.True(s.T(), transferred.TotalConsideration.Equal(decimal.New(150000, 0)))

	// dividends execute directly, no workflow involved
	dividend, err := client.RecordDividend(entities.DividendRequest{
		Class:          enum.Common,
		AmountPerShare: decimal.NewFromFloat(0.05),
	})
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "DIVIDEND", dividend.Kind)
	assert.Nil(s.T(), dividend.WorkflowID)
	require.NotNil(s.T(), dividend.TotalConsideration)
	assert.True(s.T(), dividend.TotalConsideration.Equal(decimal.New(50000, 0)))

	// check the aggregated cap table
	table, err := client.GetCapTable()
	require.Nil(s.T(), err)
	assert.EqualValues(s.T(), 1150000, table.TotalIssued)
	assert.EqualValues(s.T(), 1100000, table.TotalOutstanding)
	require.Len(s.T(), table.Classes, 2)
	assert.Equal(s.T(), "COMMON", table.Classes[0].Class)
	assert.EqualValues(s.T(), 1000000, table.Classes[0].SharesOutstanding)
	assert.EqualValues(s.T(), 2, table.Classes[0].HolderCount)
	assert.EqualValues(s.T(), 10000000, table.Classes[0].TotalAuthorized)
	require.Len(s.T(), table.Holders, 2)

	for _, holder := range table.Holders {
		switch holder.ShareholderID {
		case founder.ID:
			assert.EqualValues(s.T(), 950000, holder.SharesOutstanding)
			assert.True(s.T(), holder.OwnershipPct.Equal(decimal.NewFromFloat(86.36)))
			assert.True(s.T(), holder.VotingPct.Equal(decimal.NewFromFloat(86.36)))
			assert.EqualValues(s.T(), 950000, holder.ByClass["COMMON"])
		case investor.ID:
			assert.EqualValues(s.T(), 150000, holder.SharesOutstanding)
			assert.True(s.T(), holder.OwnershipPct.Equal(decimal.NewFromFloat(13.64)))
			assert.EqualValues(s.T(), 100000, holder.ByClass["PREFERRED_A"])
		default:
			assert.Fail(s.T(), "unexpected holder in cap table", holder.ShareholderID)
		}
	}

	// 2-for-1 split on common, one entry per holding
	splitEntries, err := nc.SplitShares(entities.SplitRequest{
		Class:            enum.Common,
		RatioNumerator:   2,
		RatioDenominator: 1,
	})
	require.Nil(s.T(), err)
	require.Len(s.T(), splitEntries, 2)
	for _, entry := range splitEntries {
		assert.Equal(s.T(), "SPLIT", entry.Kind)
	}

	// cancel the investor's post-split common back into treasury
	cancelled, err := nc.CancelShares(entities.CancellationRequest{
		ShareholderID: investor.ID,
		Class:         enum.Common,
		Shares:        100000,
	})
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "CANCELLATION", cancelled.Kind)

	// the holding is exhausted now
	_, err = nc.CancelShares(entities.CancellationRequest{
		ShareholderID: investor.ID,
		Class:         enum.Common,
		Shares:        1,
	})
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), 42210000, err.(*apiclient.ApiError).Code)

	// declare a preferred dividend over msgpack
	msgpackClient := apiclient.NewRestClient(s.apiKey.KeyID, s.apiKey.SecretKey)
	msgpackClient.SetBaseURL("http://nginxsvc")
	msgpackClient.RequestHeaders = map[string]string{
		"Content-Type": api.MIMEApplicationMsgpack,
	}
	prefDividend, err := msgpackClient.RecordDividend(entities.DividendRequest{
		Class:          enum.PreferredA,
		AmountPerShare: decimal.NewFromFloat(0.1),
	})
	require.Nil(s.T(), err)
	require.NotNil(s.T(), prefDividend)
	assert.Equal(s.T(), "DIVIDEND", prefDividend.Kind)

	// the journal delivers every entry in sequence order. reads are
	// generous because the worker runs on a 1m interval
	kinds := []string{}
	for i := 0; i < 8; i++ {
		streamMsg = StreamMsg{}
		c.SetReadDeadline(time.Now().Add(2 * time.Minute))
		err = c.ReadJSON(&streamMsg)
		require.Nil(s.T(), err)
		require.Equal(s.T(), "ledger_updates", streamMsg.Stream)
		kinds = append(kinds, streamMsg.Data["kind"].(string))
	}
	assert.Equal(s.T(), []string{
		"ISSUANCE", "ISSUANCE", "TRANSFER", "DIVIDEND",
		"SPLIT", "SPLIT", "CANCELLATION", "DIVIDEND",
	}, kinds)

	// holdings and per-holder entries reflect the whole history
	holdings, err := client.ListHoldings(founder.ID)
	require.Nil(s.T(), err)
	require.Len(s.T(), holdings, 1)
	assert.EqualValues(s.T(), 1900000, holdings[0].SharesOutstanding)

	entries, err := client.ListEntries(investor.ID)
	require.Nil(s.T(), err)
	assert.Len(s.T(), entries, 4)

	ledgerEntries, err := client.ListLedger(100)
	require.Nil(s.T(), err)
	assert.Len(s.T(), ledgerEntries, 8)

	// snapshot the register
	notes := "integration"
	snap, err := nc.GenerateSnapshot(&notes)
	require.Nil(s.T(), err)
	assert.EqualValues(s.T(), 2100000, snap.TotalIssued)
	assert.EqualValues(s.T(), 2000000, snap.TotalOutstanding)
	assert.EqualValues(s.T(), 2, snap.HolderCount)
	assert.NotEmpty(s.T(), snap.Payload)

	snaps, err := client.ListSnapshots()
	require.Nil(s.T(), err)
	require.True(s.T(), len(snaps) >= 1)

	got, err := client.GetSnapshot(snap.ID)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), snap.ID, got.ID)

	// the special resolution backing the founding issuance. the founder
	// carries 95% of the votes, so one aye decides it
	desc := "ratify the founding issuance"
	resolution, err := nc.GenerateResolution(wf.ID, entities.GenerateResolutionRequest{
		Kind:        enum.Special,
		Title:       "Special Resolution No. 1",
		Description: &desc,
	})
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "draft", resolution.Status)
	assert.True(s.T(), resolution.QuorumPct.Equal(decimal.New(75, 0)))
	assert.True(s.T(), resolution.ApprovalThresholdPct.Equal(decimal.New(75, 0)))

	voted, err := nc.Vote(resolution.ID, entities.VoteRequest{
		ShareholderID: founder.ID,
		Favor:         true,
	})
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "approved", voted.Status)
	assert.NotNil(s.T(), voted.PassedAt)
	assert.True(s.T(), voted.VotesFor.Equal(decimal.New(1900000, 0)))

	// no votes on a decided resolution
	_, err = nc.Vote(resolution.ID, entities.VoteRequest{
		ShareholderID: investor.ID,
		Favor:         false,
	})
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), 40910000, err.(*apiclient.ApiError).Code)

	filed, err := nc.FileResolution(resolution.ID)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "filed", filed.Status)
	assert.NotNil(s.T(), filed.FiledAt)

	// a borrowing below the constitutional cap gets the short workflow,
	// and the requestor can withdraw it
	created, err = client.CreateWorkflow(entities.CreateWorkflowRequest{
		Action: enum.Borrowing,
		Params: json.RawMessage(`{"amount":250000,"lender":"First Registry Bank","term_months":12}`),
	})
	require.Nil(s.T(), err)
	wf4 := created.Workflow
	require.Len(s.T(), wf4.Steps, 2)

	withdrawn, err := nc.CancelWorkflow(wf4.ID, "facility shelved")
	require.Nil(s.T(), err)
	assert.Equal(s.T(), "cancelled", withdrawn.Status)
	require.NotNil(s.T(), withdrawn.RejectionReason)
	assert.Contains(s.T(), *withdrawn.RejectionReason, "facility shelved")

	// nothing left pending
	pending, err := client.ListWorkflows("")
	require.Nil(s.T(), err)
	assert.Len(s.T(), pending, 0)

	approved, err := client.ListWorkflows("approved")
	require.Nil(s.T(), err)
	assert.Len(s.T(), approved, 3)

	s.T().Logf("TestRegister complete [%v]", clock.Now().Sub(start))
}

type StreamMsg struct {
	Stream string                 `json:"stream"`
	Data   map[string]interface{} `json:"data"`
}

func getStreamSocket() *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: "nginxsvc", Path: "/stream"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		panic(err)
	}
	return c
}

func gracefulClose(c *websocket.Conn) {
	err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		log.Warn("write closure", "error", err)
		return
	}
	c.Close()
}

func (s *TestSuite) internalClient() *apiclient.InternalClient {
	client, err := apiclient.NewInternalClient(s.apiKey.AdminID, env.GetVar("ADMIN_SECRET"))
	require.Nil(s.T(), err)
	client.SetBaseURL("http://nginxsvc")
	return client
}

func (s *TestSuite) TestInternal() {
	start := clock.Now()

	client := s.internalClient()

	var created *apiclient.AccessKey
	// Create Access Key
	{
		accessKey, err := client.CreateAccessKey()
		assert.Nil(s.T(), err)
		assert.NotEmpty(s.T(), accessKey.ID)
		assert.NotEmpty(s.T(), accessKey.Secret)
		created = accessKey
	}

	// List Access Keys
	{
		accessKeys, err := client.ListAccessKeys()
		assert.Nil(s.T(), err)
		assert.Len(s.T(), accessKeys, 2)
	}

	// Delete Access Key
	{
		err := client.DeleteAccessKey(created.ID)
		assert.Nil(s.T(), err)

		accessKeys, err := client.ListAccessKeys()
		assert.Nil(s.T(), err)
		assert.Len(s.T(), accessKeys, 1)
	}

	//
	// shareholder records
	//

	var record *apiclient.Shareholder

	// Create
	{
		email := "records-test@alpaca.markets"
		city := "San Mateo"
		sh, err := client.CreateShareholder(entities.CreateShareholderRequest{
			LegalName:  "Records Test Co",
			Email:      &email,
			EntityType: enum.Corporation,
			City:       &city,
		})
		require.Nil(s.T(), err)
		assert.Equal(s.T(), "ACTIVE", sh.Status)
		record = sh
	}

	// duplicate email is refused
	{
		email := "records-test@alpaca.markets"
		_, err := client.CreateShareholder(entities.CreateShareholderRequest{
			LegalName:  "Records Test Duplicate",
			Email:      &email,
			EntityType: enum.Corporation,
		})
		require.NotNil(s.T(), err)
		assert.Equal(s.T(), err.Error(), "duplicate email")
	}

	// Patch
	{
		sh, err := client.PatchShareholder(record.ID, map[string]interface{}{
			"city": "Tokyo",
		})
		assert.Nil(s.T(), err)
		require.NotNil(s.T(), sh.City)
		assert.Equal(s.T(), "Tokyo", *sh.City)
	}

	// List
	{
		list, err := client.ListShareholders("")
		assert.Nil(s.T(), err)
		require.NotNil(s.T(), list)
		assert.Len(s.T(), list.Shareholders, 1)
		assert.EqualValues(s.T(), 1, list.Meta.TotalCount)
	}

	// Delete exits the holder but keeps the record
	{
		err := client.DeleteShareholder(record.ID)
		assert.Nil(s.T(), err)

		sh, err := client.GetShareholder(record.ID)
		assert.Nil(s.T(), err)
		assert.Equal(s.T(), "EXITED", sh.Status)

		list, err := client.ListShareholders("active")
		assert.Nil(s.T(), err)
		assert.Len(s.T(), list.Shareholders, 0)
	}

	s.T().Logf("TestInternal complete [%v]", clock.Now().Sub(start))
}
