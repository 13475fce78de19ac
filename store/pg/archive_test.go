package pg

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	st "splitsui/store/store"
)

var testDB *gorm.DB
var archive st.Archive

func initTest(t *testing.T) {
	t.Helper()
	var err error
	testDB, err = InitPostgresGORM(CreateDSN())
	if err != nil {
		t.Skipf("PostgreSQL not reachable: %v", err)
	}
	archive = NewGORMArchive(testDB)
}

func cleanupTest() {
	testDB.Exec("DELETE FROM archived_requests;")
	testDB.Exec("DELETE FROM archived_transactions;")
	testDB.Exec("DELETE FROM reconcile_passes;")
	CloseGORM(testDB)
}

func TestSaveAndLoadPass(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	pass := &st.ReconcilePass{
		ID:      uuid.New(),
		Address: "0xaaa",
		RunAt:   time.Now().UTC().Truncate(time.Microsecond),
		Requests: []st.ArchivedRequest{{
			RequestID:      "0xr1",
			Creator:        "0xcreator",
			Recipient:      "0xrecipient",
			Description:    "lunch",
			Payers:         []string{"0xaaa", "0xbbb"},
			Amounts:        []int64{1_000_000_000, 2_000_000_000},
			TotalAmount:    3_000_000_000,
			TotalCollected: 1_000_000_000,
			Role:           st.RoleBoth,
		}},
	}

	require.NoError(t, archive.SavePass(pass))

	latest, err := archive.LatestPass("0xaaa")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, pass.ID, latest.ID)
	require.Len(t, latest.Requests, 1)
	assert.Equal(t, pass.Requests[0].Payers, latest.Requests[0].Payers)
	assert.Equal(t, pass.Requests[0].Amounts, latest.Requests[0].Amounts)
	assert.Equal(t, st.RoleBoth, latest.Requests[0].Role)
}

func TestLatestPassPicksNewest(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	older := &st.ReconcilePass{ID: uuid.New(), Address: "0xaaa", RunAt: time.Now().UTC().Add(-time.Hour)}
	newer := &st.ReconcilePass{ID: uuid.New(), Address: "0xaaa", RunAt: time.Now().UTC()}
	require.NoError(t, archive.SavePass(older))
	require.NoError(t, archive.SavePass(newer))

	latest, err := archive.LatestPass("0xaaa")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestSaveTransactionsUpsert(t *testing.T) {
	initTest(t)
	defer cleanupTest()

	txs := []st.ArchivedTransaction{{
		Digest:    "tx1",
		Address:   "0xaaa",
		Kind:      "Multi-Send",
		Status:    "Success",
		Timestamp: "2024-01-01 10:00:00",
		GasUsed:   "3500000",
		Details:   map[string]string{"recipientCount": "3"},
	}}
	require.NoError(t, archive.SaveTransactions("0xaaa", txs))

	txs[0].Status = "Failed"
	require.NoError(t, archive.SaveTransactions("0xaaa", txs))

	got, err := archive.GetTransactions("0xaaa", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Failed", got[0].Status)
	assert.Equal(t, "3", got[0].Details["recipientCount"])
}
