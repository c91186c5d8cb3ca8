package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

func TestPaymentRepository_TransitionStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	company := testutil.TestCompany(t, db)
	payment := testutil.TestPayment(t, db, company.ID)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	ok, err := repo.TransitionStatus(payment.ID, model.PaymentPendingApproval, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(payment.ID, model.PaymentCompleted, map[string]interface{}{
		"transaction_id": "tx-1",
		"paid_at":        now,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// 终态不可再迁移
	ok, err = repo.TransitionStatus(payment.ID, model.PaymentFailed, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.TransitionStatus(payment.ID, model.PaymentCompleted, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, got.Status)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, "tx-1", *got.TransactionID)
}

func TestPaymentRepository_UpsertApproval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	company := testutil.TestCompany(t, db)
	payment := testutil.TestPayment(t, db, company.ID)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertApproval(&model.PaymentApproval{
		PaymentID: payment.ID, Token: "first", Status: model.ApprovalPending, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.UpsertApproval(&model.PaymentApproval{
		PaymentID: payment.ID, Token: "second", Status: model.ApprovalPending, ExpiresAt: now.Add(2 * time.Hour),
	}))

	var count int64
	db.Model(&model.PaymentApproval{}).Where("payment_id = ?", payment.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err := repo.GetApprovalByToken("first")
	assert.Error(t, err)

	approval, err := repo.GetApprovalByToken("second")
	require.NoError(t, err)
	assert.True(t, approval.ExpiresAt.Equal(now.Add(2*time.Hour)))
	require.NotNil(t, approval.Payment)
	assert.Equal(t, payment.ID, approval.Payment.ID)
}

func TestPaymentRepository_TransitionApproval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	company := testutil.TestCompany(t, db)
	payment := testutil.TestPayment(t, db, company.ID)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	approval := testutil.TestApproval(t, db, payment.ID, "tok", now.Add(time.Hour))

	ok, err := repo.TransitionApproval(approval.ID, model.ApprovalPending, model.ApprovalApproved, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionApproval(approval.ID, model.ApprovalPending, model.ApprovalRejected, now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := repo.GetApprovalByPaymentID(payment.ID)
	assert.Equal(t, model.ApprovalApproved, got.Status)
	require.NotNil(t, got.ProcessedAt)
}

func TestPaymentRepository_ListByCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	company := testutil.TestCompany(t, db)
	other := testutil.TestCompany(t, db)
	testutil.TestPayment(t, db, company.ID)
	testutil.TestPayment(t, db, company.ID)
	testutil.TestPayment(t, db, other.ID)

	payments, total, err := repo.ListByCompany(company.ID, Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, payments, 2)
}
