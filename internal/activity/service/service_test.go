package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Upstream,Ledger,Properties

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"targetkit/internal/activity/models"
	"targetkit/internal/activity/service/mocks"
	ledgermodels "targetkit/internal/ledger/models"
	ledgerservice "targetkit/internal/ledger/service"
	"targetkit/internal/ledger/store"
	"targetkit/internal/upstream"
	"targetkit/internal/workspace"
	dErrors "targetkit/pkg/domain-errors"
)

var (
	testOwner      = ledgermodels.Owner{Tenant: "acme", ClientID: "client-1"}
	testWorkspaces = workspace.MustNew([]workspace.Workspace{
		{Name: "Default", ID: "ws-0"},
		{Name: "EU", ID: "ws-1"},
	})
)

func upstreamErr(op string, status int, body string) error {
	return &upstream.Error{
		Category:  upstream.CategoryForStatus(status),
		Operation: op,
		Status:    status,
		Message:   upstream.BestMessage([]byte(body), "upstream failed"),
		Body:      []byte(body),
	}
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	upstream   *mocks.MockUpstream
	properties *mocks.MockProperties
	ledger     *ledgerservice.Service
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.upstream = mocks.NewMockUpstream(s.ctrl)
	s.properties = mocks.NewMockProperties(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ledger = ledgerservice.New(store.NewInMemory(), ledgerservice.WithLogger(logger))
	s.service = New(s.upstream, s.ledger, s.properties, testWorkspaces, testOwner, WithLogger(logger))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) record(ids ...string) {
	for _, id := range ids {
		s.Require().NoError(s.ledger.Record(s.ctx, testOwner, id))
	}
}

func (s *ServiceSuite) TestListFiltersToOwnedActivities() {
	s.record("1", "3")
	s.Require().NoError(s.ledger.Record(s.ctx, ledgermodels.Owner{Tenant: "acme", ClientID: "other"}, "2"))

	s.upstream.EXPECT().ListActivities(gomock.Any(), "ws-1").Return([]upstream.Item{
		{"id": json.Number("1"), "name": "a"},
		{"id": json.Number("2"), "name": "b"},
		{"activityId": "3", "name": "c"},
	}, nil)

	items, err := s.service.List(s.ctx, "ws-1")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("a", items[0]["name"])
	s.Equal("c", items[1]["name"])
	s.Equal("EU", items[1]["workspaceName"])
}

func (s *ServiceSuite) TestListAllWorkspaces() {
	s.record("10", "20")
	s.upstream.EXPECT().ListActivities(gomock.Any(), "ws-0").Return([]upstream.Item{{"id": "10"}, {"id": "11"}}, nil)
	s.upstream.EXPECT().ListActivities(gomock.Any(), "ws-1").Return([]upstream.Item{{"id": "20"}}, nil)

	items, err := s.service.List(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("ws-0", items[0]["workspaceId"])
	s.Equal("ws-1", items[1]["workspaceId"])
}

func (s *ServiceSuite) TestDelete() {
	s.Run("not owned is forbidden without upstream call", func() {
		_, err := s.service.Delete(s.ctx, "99")
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(dErrors.CodeForbidden, de.Code)
		s.Equal(msgNotOwnedDelete, de.Message)
	})

	s.Run("owned activity is deleted then forgotten", func() {
		s.record("5")
		s.upstream.EXPECT().DeleteActivity(gomock.Any(), "5").Return(nil)

		res, err := s.service.Delete(s.ctx, "5")
		s.Require().NoError(err)
		s.Equal(&models.ActionResponse{Success: true, ActivityID: "5"}, res)
		s.False(s.ledger.IDsOwnedBy(s.ctx, testOwner).Has("5"))
	})

	s.Run("upstream failure keeps the ledger entry", func() {
		s.record("6")
		s.upstream.EXPECT().DeleteActivity(gomock.Any(), "6").
			Return(upstreamErr(upstream.OpDeleteActivity, http.StatusConflict, `{"message":"activity is live"}`))

		_, err := s.service.Delete(s.ctx, "6")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.True(s.ledger.IDsOwnedBy(s.ctx, testOwner).Has("6"))
	})
}

func (s *ServiceSuite) TestUpdateOptions() {
	s.Run("not owned", func() {
		_, err := s.service.UpdateOptions(s.ctx, "77", []models.OptionUpdate{{OptionLocalID: 0, OfferID: "1"}})
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(msgNotOwnedUpdate, de.Message)
	})

	s.Run("merges and patches in the activity workspace", func() {
		s.record("7")
		s.upstream.EXPECT().GetActivity(gomock.Any(), "7").Return(upstream.Item{
			"id":        json.Number("7"),
			"workspace": json.Number("1234"),
			"options": []any{
				map[string]any{"optionLocalId": json.Number("0"), "offerId": json.Number("100"), "name": "A"},
				map[string]any{"optionLocalId": json.Number("1"), "offerId": json.Number("101")},
			},
		}, nil)
		s.upstream.EXPECT().PatchActivity(gomock.Any(), "7", "1234", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, patch any) (upstream.Item, error) {
				opts := patch.(map[string]any)["options"].([]any)
				s.Equal(int64(555), opts[1].(map[string]any)["offerId"])
				s.Equal(json.Number("100"), opts[0].(map[string]any)["offerId"])
				return nil, nil
			})

		res, err := s.service.UpdateOptions(s.ctx, "7", []models.OptionUpdate{
			{OptionLocalID: float64(1), OfferID: "555"},
			{OptionLocalID: float64(9), OfferID: "999"},
		})
		s.Require().NoError(err)
		s.Equal(upstream.Item{"success": true}, res)
	})

	s.Run("load failure mirrors upstream status", func() {
		s.record("8")
		s.upstream.EXPECT().GetActivity(gomock.Any(), "8").
			Return(nil, upstreamErr(upstream.OpGetActivity, http.StatusNotFound, `{}`))

		_, err := s.service.UpdateOptions(s.ctx, "8", []models.OptionUpdate{{OptionLocalID: 0, OfferID: "1"}})
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(http.StatusNotFound, de.Status)
		s.Equal(msgLoadForUpdate, de.Message)
	})
}

func (s *ServiceSuite) TestCreate() {
	s.Run("default workspace skips properties and records the id", func() {
		s.upstream.EXPECT().CreateActivity(gomock.Any(), "ws-0", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, payload any) (upstream.Item, error) {
				ab := payload.(models.ABActivity)
				s.Equal(int64(42), ab.Options[0].OfferID)
				s.Equal(models.StateSaved, ab.State)
				s.Nil(ab.PropertyIDs)
				return upstream.Item{"id": json.Number("900")}, nil
			})

		res, err := s.service.Create(s.ctx, &models.CreateRequest{Name: "Test", OfferID: "42"})
		s.Require().NoError(err)
		s.Equal("900", res.ActivityID)
		s.True(s.ledger.IDsOwnedBy(s.ctx, testOwner).Has("900"))
	})

	s.Run("non-default workspace attaches properties", func() {
		s.properties.EXPECT().IDsForWorkspace(gomock.Any(), "ws-1").Return([]any{json.Number("3")})
		s.upstream.EXPECT().CreateActivity(gomock.Any(), "ws-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, payload any) (upstream.Item, error) {
				ab := payload.(models.ABActivity)
				s.Equal([]any{json.Number("3")}, ab.PropertyIDs)
				s.Equal(models.StateLive, ab.State)
				return upstream.Item{"activityId": "901"}, nil
			})

		res, err := s.service.Create(s.ctx, &models.CreateRequest{Name: "Test", OfferID: "abc", WorkspaceID: "ws-1", ActivityStatus: "live"})
		s.Require().NoError(err)
		s.Equal("901", res.ActivityID)
	})

	s.Run("non-default workspace without properties is rejected", func() {
		s.properties.EXPECT().IDsForWorkspace(gomock.Any(), "ws-1").Return([]any{})

		_, err := s.service.Create(s.ctx, &models.CreateRequest{Name: "Test", OfferID: "1", WorkspaceID: "ws-1"})
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(dErrors.CodeBadRequest, de.Code)
		s.Equal(msgNoProperties, de.Message)
	})

	s.Run("upstream rejection carries details", func() {
		s.upstream.EXPECT().CreateActivity(gomock.Any(), "ws-0", gomock.Any()).
			Return(nil, upstreamErr(upstream.OpCreateActivity, http.StatusBadRequest, `{"message":"bad mbox"}`))

		_, err := s.service.Create(s.ctx, &models.CreateRequest{Name: "Test", OfferID: "1"})
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal("bad mbox", de.Message)
		s.NotNil(de.Details)
	})
}

func (s *ServiceSuite) TestRemoveFromMineOnlyTouchesLedger() {
	s.record("12")
	res, err := s.service.RemoveFromMine(s.ctx, "12")
	s.Require().NoError(err)
	s.True(res.Success)
	s.Empty(s.ledger.IDsOwnedBy(s.ctx, testOwner))
}

func (s *ServiceSuite) TestSetState() {
	s.upstream.EXPECT().SetActivityState(gomock.Any(), "3", "approved").Return(upstream.Item{"state": "approved"}, nil)

	res, err := s.service.SetState(s.ctx, "3", "approved")
	s.Require().NoError(err)
	s.Equal(&models.StateResponse{Success: true, ActivityID: "3", State: "approved", Data: upstream.Item{"state": "approved"}}, res)
}

func TestLedgerFailureIsSurfacedAfterCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	up := mocks.NewMockUpstream(ctrl)
	ledger := mocks.NewMockLedger(ctrl)
	svc := New(up, ledger, mocks.NewMockProperties(ctrl), testWorkspaces, testOwner,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	up.EXPECT().CreateActivity(gomock.Any(), "ws-0", gomock.Any()).Return(upstream.Item{"id": "1"}, nil)
	ledger.EXPECT().Record(gomock.Any(), testOwner, "1").
		Return(dErrors.Wrap(errors.New("disk full"), dErrors.CodeInternal, "failed to record"))

	_, err := svc.Create(context.Background(), &models.CreateRequest{Name: "x", OfferID: "1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestOwnershipIsCheckedBeforeUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	up := mocks.NewMockUpstream(ctrl)
	ledger := mocks.NewMockLedger(ctrl)
	svc := New(up, ledger, mocks.NewMockProperties(ctrl), testWorkspaces, testOwner)

	ledger.EXPECT().RequireOwned(gomock.Any(), testOwner, "5").
		Return(dErrors.New(dErrors.CodeForbidden, "not owned")).Times(2)

	_, err := svc.Delete(context.Background(), "5")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	_, err = svc.UpdateOptions(context.Background(), "5", []models.OptionUpdate{{OptionLocalID: 0, OfferID: 1}})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestMergeOptions(t *testing.T) {
	existing := []any{
		map[string]any{"optionLocalId": float64(0), "offerId": float64(1)},
		"not an option",
		map[string]any{"optionLocalId": "2", "offerId": float64(3)},
	}
	merged := MergeOptions(existing, []models.OptionUpdate{
		{OptionLocalID: "0", OfferID: "10"},
		{OptionLocalID: float64(2), OfferID: "offer-x"},
		{OptionLocalID: nil, OfferID: "11"},
		{OptionLocalID: float64(0), OfferID: nil},
	})

	assert.Equal(t, int64(10), merged[0].(map[string]any)["offerId"])
	assert.Equal(t, "not an option", merged[1])
	assert.Equal(t, "offer-x", merged[2].(map[string]any)["offerId"])
	assert.Equal(t, float64(1), existing[0].(map[string]any)["offerId"], "input must not be mutated")
}

func TestNumericOrRaw(t *testing.T) {
	assert.Equal(t, int64(123), NumericOrRaw("123"))
	assert.Equal(t, int64(7), NumericOrRaw(float64(7)))
	assert.Equal(t, "abc", NumericOrRaw("abc"))
	assert.Equal(t, "0", NumericOrRaw("0"))
}
