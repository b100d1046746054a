package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/config"
	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/infrastructure/database"
	"github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/internal/presentation/http/handler"
	"github.com/finguard/treasury-api/internal/presentation/http/routes"
	"github.com/finguard/treasury-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type app struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtManager *utils.JWTManager
}

func newTestApp(t *testing.T) *app {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		App:       config.AppConfig{Name: "treasury-api", Env: "test"},
		JWT:       config.JWTConfig{Secret: "test-secret", ExpiryHours: time.Hour},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
		Approval: config.ApprovalConfig{
			Thresholds: []config.ThresholdRule{
				{Currency: "USD", MinAmount: decimal.NewFromInt(10000), RequiredApprovals: 2},
				{Currency: "BTC", MinAmount: decimal.RequireFromString("0.1"), RequiredApprovals: 3},
				{Currency: "*", MinAmount: decimal.NewFromInt(10000), RequiredApprovals: 2},
			},
			HighValueAmount:    decimal.NewFromInt(50000),
			EscalatedApprovals: 3,
		},
		Delivery: config.DeliveryConfig{
			MaxAttempts:      5,
			Backoff:          time.Minute,
			WebhookEndpoints: []string{"https://hooks.example.com/treasury"},
		},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	decisionRepo := repository.NewApprovalDecisionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	retryRepo := repository.NewRetryAttemptRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	deliveryRepo := repository.NewDeliveryAttemptRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	runner := repository.NewStepRunner(db)
	policy := service.NewApprovalPolicy(&cfg.Approval)

	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(service.NewAuthService(userRepo, jwtManager)),
		Transaction: handler.NewTransactionHandler(service.NewTransactionService(runner, transactionRepo, auditRepo, policy)),
		Approval: handler.NewApprovalHandler(service.NewApprovalService(
			runner, transactionRepo, decisionRepo, deliveryRepo, auditRepo,
			cfg.Delivery.WebhookEndpoints, cfg.Delivery.Backoff,
		)),
		Snapshot: handler.NewSnapshotHandler(service.NewSnapshotService(runner, snapshotRepo)),
		Ops: handler.NewOpsHandler(
			service.NewRetryService(runner, retryRepo),
			service.NewDeliveryService(runner, deliveryRepo, cfg.Delivery.MaxAttempts, cfg.Delivery.Backoff),
			idempotencyRepo,
			auditRepo,
		),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	return &app{router: router, db: db, jwtManager: jwtManager}
}

// tokenFor creates a user with the given role and returns a bearer token
func (a *app) tokenFor(t *testing.T, email, role string) string {
	user := &entity.User{FirstName: "Test", Email: email, Password: "hashed", Role: role}
	require.NoError(t, a.db.Create(user).Error)

	token, err := a.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return token
}

func (a *app) request(t *testing.T, method, path, token string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func createTransaction(t *testing.T, a *app, token, reference, amount, currency string) map[string]interface{} {
	w := a.request(t, http.MethodPost, "/api/v1/transactions", token, gin.H{
		"reference_no": reference,
		"amount":       amount,
		"currency":     currency,
	}, map[string]string{"Idempotency-Key": "idem-" + reference})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataField(t, w)
}

func decide(t *testing.T, a *app, token, txnID, decision, comment string) *httptest.ResponseRecorder {
	return a.request(t, http.MethodPost, fmt.Sprintf("/api/v1/transactions/%s/decisions", txnID), token, gin.H{
		"decision": decision,
		"comment":  comment,
	}, nil)
}

// =============================================================================
// END-TO-END SCENARIOS
// =============================================================================

func TestScenario_TwoApprovals_TransactionCompletes(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)
	officer1 := a.tokenFor(t, "officer1@example.com", entity.RoleComplianceOfficer)
	officer2 := a.tokenFor(t, "officer2@example.com", entity.RoleComplianceOfficer)
	admin := a.tokenFor(t, "admin@example.com", entity.RoleAdmin)

	// A 15000 USD transfer lands in the approval queue with a quorum of two
	txn := createTransaction(t, a, owner, "TXN-E2E-1", "15000", "USD")
	assert.Equal(t, "PENDING_APPROVAL", txn["status"])
	assert.EqualValues(t, 2, txn["required_approvals"])
	txnID := txn["id"].(string)

	w := decide(t, a, officer1, txnID, "APPROVED", "verified invoice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = decide(t, a, officer2, txnID, "APPROVED", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.request(t, http.MethodPost, fmt.Sprintf("/api/v1/transactions/%s/complete", txnID), admin, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "COMPLETED", dataField(t, w)["status"])
}

func TestScenario_Rejection_OverridesPriorApproval(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)
	officer1 := a.tokenFor(t, "officer1@example.com", entity.RoleComplianceOfficer)
	officer2 := a.tokenFor(t, "officer2@example.com", entity.RoleComplianceOfficer)
	admin := a.tokenFor(t, "admin@example.com", entity.RoleAdmin)

	txn := createTransaction(t, a, owner, "TXN-E2E-2", "20000", "USD")
	txnID := txn["id"].(string)

	w := decide(t, a, officer1, txnID, "APPROVED", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = decide(t, a, officer2, txnID, "REJECTED", "sanctions screening failed")
	require.Equal(t, http.StatusOK, w.Code)
	rejected := dataField(t, w)["transaction"].(map[string]interface{})
	assert.Equal(t, "REJECTED", rejected["status"])
	assert.Equal(t, "sanctions screening failed", rejected["rejection_reason"])

	// A rejected transaction can never be completed
	w = a.request(t, http.MethodPost, fmt.Sprintf("/api/v1/transactions/%s/complete", txnID), admin, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestScenario_CryptoThreshold_RequiresThreeApprovers(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)

	txn := createTransaction(t, a, owner, "TXN-E2E-3", "0.5", "BTC")

	assert.Equal(t, "PENDING_APPROVAL", txn["status"])
	assert.EqualValues(t, 3, txn["required_approvals"])
}

func TestScenario_IdempotentCreate_ReplaysResponse(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)

	body := gin.H{"reference_no": "TXN-E2E-4", "amount": "15000", "currency": "USD"}
	headers := map[string]string{"Idempotency-Key": "idem-e2e-4"}

	first := a.request(t, http.MethodPost, "/api/v1/transactions", owner, body, headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := a.request(t, http.MethodPost, "/api/v1/transactions", owner, body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	var count int64
	require.NoError(t, a.db.Model(&entity.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestScenario_MissingIdempotencyKey_CreateRejected(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)

	w := a.request(t, http.MethodPost, "/api/v1/transactions", owner,
		gin.H{"reference_no": "TXN-E2E-5", "amount": "100", "currency": "USD"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScenario_AuditTrail_RecordsLifecycle(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)
	officer := a.tokenFor(t, "officer@example.com", entity.RoleComplianceOfficer)

	txn := createTransaction(t, a, owner, "TXN-E2E-8", "15000", "USD")
	txnID := txn["id"].(string)

	w := decide(t, a, officer, txnID, "REJECTED", "duplicate invoice")
	require.Equal(t, http.StatusOK, w.Code)

	w = a.request(t, http.MethodGet, "/api/v1/audit?entity_ref=transaction:"+txnID, officer, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)

	actions := []string{envelope.Data[0]["action"].(string), envelope.Data[1]["action"].(string)}
	assert.Contains(t, actions, "transaction.created")
	assert.Contains(t, actions, "transaction.rejected")
}

func TestScenario_RejectedTransaction_DeliveryRecorded(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)
	officer := a.tokenFor(t, "officer@example.com", entity.RoleComplianceOfficer)

	txn := createTransaction(t, a, owner, "TXN-E2E-9", "15000", "USD")
	txnID := txn["id"].(string)

	w := decide(t, a, officer, txnID, "REJECTED", "wrong beneficiary")
	require.Equal(t, http.StatusOK, w.Code)

	w = a.request(t, http.MethodGet, "/api/v1/deliveries/events/transaction.rejected."+txnID, owner, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "https://hooks.example.com/treasury", envelope.Data[0]["target_url"])
	assert.Equal(t, "PENDING", envelope.Data[0]["status"])
}

// =============================================================================
// ACCESS CONTROL
// =============================================================================

func TestScenario_RegularUser_CannotDecide(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)
	other := a.tokenFor(t, "other@example.com", entity.RoleUser)

	txn := createTransaction(t, a, owner, "TXN-E2E-6", "15000", "USD")

	w := decide(t, a, other, txn["id"].(string), "APPROVED", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestScenario_Officer_CannotComplete(t *testing.T) {
	a := newTestApp(t)
	owner := a.tokenFor(t, "owner@example.com", entity.RoleUser)
	officer := a.tokenFor(t, "officer@example.com", entity.RoleComplianceOfficer)

	txn := createTransaction(t, a, owner, "TXN-E2E-7", "15000", "USD")

	w := a.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/transactions/%s/complete", txn["id"].(string)), officer, nil, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestScenario_Unauthenticated_Rejected(t *testing.T) {
	a := newTestApp(t)

	w := a.request(t, http.MethodGet, "/api/v1/transactions", "", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
