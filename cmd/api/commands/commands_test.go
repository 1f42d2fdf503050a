package commands

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifyhub/core/internal/adapters/recordstore"
	"github.com/unifyhub/core/internal/domain/entities"
)

func TestSeedRecordsMatchRegistry(t *testing.T) {
	seeded := 0
	for _, table := range recordstore.Tables() {
		columns, err := recordstore.Columns(table)
		require.NoError(t, err)

		allowed := make(map[string]struct{}, len(columns))
		for _, c := range columns {
			allowed[c] = struct{}{}
		}

		records := seedRecords(table)
		require.NotEmpty(t, records, "table %s has no starter records", table)
		seeded += len(records)

		for _, record := range records {
			for field := range record {
				assert.Contains(t, allowed, field, "field %s is not a column of %s", field, table)
			}
		}
	}
	assert.Equal(t, 6, len(recordstore.Tables()))
	assert.Greater(t, seeded, 10)
}

func TestSeedRuleDefinitionsAreValid(t *testing.T) {
	for _, record := range seedRecords(recordstore.TableRule) {
		var conditions []entities.RuleCondition
		require.NoError(t, json.Unmarshal([]byte(record["conditions"]), &conditions))
		require.NotEmpty(t, conditions)
		for _, c := range conditions {
			assert.NoError(t, c.Validate())
		}

		var actions []entities.RuleAction
		require.NoError(t, json.Unmarshal([]byte(record["actions"]), &actions))
		require.NotEmpty(t, actions)
		for _, a := range actions {
			assert.NoError(t, a.Validate())
		}

		assert.Empty(t, record["last_run"])
	}
}

func TestSeedConnectionsComeFromCatalog(t *testing.T) {
	for _, record := range seedRecords(recordstore.TableServiceConnection) {
		_, ok := entities.ServiceByID(record["service_id"])
		assert.True(t, ok, "service %s is not in the catalog", record["service_id"])
		assert.Equal(t, string(entities.ConnectionStatusConnected), record["status"])

		_, err := time.Parse(time.RFC3339, record["last_sync"])
		assert.NoError(t, err)
	}
}

func TestSeedTimestampsParse(t *testing.T) {
	for _, record := range seedRecords(recordstore.TableMessage) {
		_, err := time.Parse(time.RFC3339, record["timestamp"])
		assert.NoError(t, err)
	}
	for _, record := range seedRecords(recordstore.TableEvent) {
		start, err := time.Parse(time.RFC3339, record["start"])
		require.NoError(t, err)
		end, err := time.Parse(time.RFC3339, record["end"])
		require.NoError(t, err)
		assert.True(t, end.After(start))
	}
}
