package handler

import (
	"fmt"
	"net/http"
	"testing"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestAutoBidHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAutoBidServiceInterface(ctrl)
	handler := NewAutoBidHandler(mockService)

	router := newTestRouter()
	router.PUT("/users/:user_id/autobid", handler.SetConfigHandler)
	router.GET("/users/:user_id/autobid", handler.GetConfigHandler)
	router.POST("/users/:user_id/autobid/auctions/:auction_id", handler.ToggleAuctionHandler)
	router.PATCH("/users/:user_id/autobid/status", handler.SetStatusHandler)

	config := func(participantID string) model.AutoBidConfig {
		return model.AutoBidConfig{
			ParticipantID:      participantID,
			MaxBidAmount:       dec("200"),
			BidAlertPercentage: 80,
			Status:             model.AutoBidActive,
			ActiveBids: []model.ActiveBid{
				{ItemID: "item1", AllocatedAmount: dec("121")},
				{ItemID: "item2", AllocatedAmount: dec("30")},
			},
		}
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:   "set_config_success",
			method: http.MethodPut,
			path:   "/users/user1/autobid",
			body:   `{"max_bid_amount":"200","bid_alert_percentage":80}`,
			mockSetup: func() {
				mockService.EXPECT().SetConfig(gomock.Any(), "user1", decimalEq{dec("200")}, 80).Return(config("user1"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auto-bid config saved",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "200", data["max_bid_amount"])
				require.Equal(t, "151", data["total_allocated"])
				require.Len(t, data["active_bids"], 2)
			},
		},
		{
			name:           "set_config_percentage_out_of_range",
			method:         http.MethodPut,
			path:           "/users/user2/autobid",
			body:           `{"max_bid_amount":"200","bid_alert_percentage":150}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "set_config_negative_amount",
			method:         http.MethodPut,
			path:           "/users/user3/autobid",
			body:           `{"max_bid_amount":"-1","bid_alert_percentage":50}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:   "get_config_success",
			method: http.MethodGet,
			path:   "/users/user4/autobid",
			mockSetup: func() {
				mockService.EXPECT().GetConfig(gomock.Any(), "user4").Return(config("user4"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auto-bid config retrieved",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "user4", data["participant_id"])
				require.Equal(t, "active", data["status"])
			},
		},
		{
			name:   "get_config_not_found",
			method: http.MethodGet,
			path:   "/users/ghost/autobid",
			mockSetup: func() {
				mockService.EXPECT().GetConfig(gomock.Any(), "ghost").Return(model.AutoBidConfig{}, fmt.Errorf("autobid: %w", biddingerrors.ErrConfigNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auto-bid config not found",
		},
		{
			name:   "toggle_enrolls",
			method: http.MethodPost,
			path:   "/users/user5/autobid/auctions/auction1",
			mockSetup: func() {
				mockService.EXPECT().ToggleItem(gomock.Any(), "user5", "auction1").Return(config("user5"), true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auction enrolled in auto-bidding",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, true, data["enrolled"])
			},
		},
		{
			name:   "toggle_withdraws",
			method: http.MethodPost,
			path:   "/users/user6/autobid/auctions/auction1",
			mockSetup: func() {
				mockService.EXPECT().ToggleItem(gomock.Any(), "user6", "auction1").Return(config("user6"), false, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auction removed from auto-bidding",
		},
		{
			name:   "toggle_ended_auction",
			method: http.MethodPost,
			path:   "/users/user7/autobid/auctions/auction9",
			mockSetup: func() {
				mockService.EXPECT().ToggleItem(gomock.Any(), "user7", "auction9").Return(model.AutoBidConfig{}, false, biddingerrors.ErrAuctionEnded)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction has ended",
		},
		{
			name:   "pause",
			method: http.MethodPatch,
			path:   "/users/user8/autobid/status",
			body:   `{"status":"paused"}`,
			mockSetup: func() {
				cfg := config("user8")
				cfg.Status = model.AutoBidPaused
				mockService.EXPECT().SetStatus(gomock.Any(), "user8", model.AutoBidPaused).Return(cfg, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auto-bid status updated",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "paused", data["status"])
			},
		},
		{
			name:           "unknown_status",
			method:         http.MethodPatch,
			path:           "/users/user9/autobid/status",
			body:           `{"status":"sleeping"}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			status, resp := doRequest(t, router, tc.method, tc.path, tc.body)
			require.Equal(t, tc.expectedStatus, status)
			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && status == http.StatusOK {
				tc.validateData(t, resp["data"].(map[string]any))
			}
		})
	}
}
