package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/placement-engine/internal/types"
)

const validRoleConfig = `{
	"roles": {
		"student": {
			"collections": [
				{
					"key": "internships",
					"label": "Internships",
					"search_fields": ["role", "company"],
					"filters": [
						{"field": "location", "kind": "membership"},
						{"field": "stipend", "kind": "range", "min": 0}
					]
				}
			]
		}
	}
}`

func TestParseConfig_Valid(t *testing.T) {
	cfg, err := ParseConfig([]byte(validRoleConfig))
	require.NoError(t, err)

	cc := cfg.CollectionConfig("student", "internships")
	require.NotNil(t, cc)
	assert.Equal(t, []string{"role", "company"}, cc.SearchFields)
	require.Len(t, cc.Filters, 2)
	assert.Equal(t, FilterMembership, cc.Filters[0].Kind)
	assert.Equal(t, FilterRange, cc.Filters[1].Kind)
}

func TestParseConfig_RejectsBadKind(t *testing.T) {
	bad := `{
		"roles": {
			"student": {
				"collections": [
					{"key": "internships", "label": "I", "search_fields": ["role"],
					 "filters": [{"field": "location", "kind": "fuzzy"}]}
				]
			}
		}
	}`

	_, err := ParseConfig([]byte(bad))
	require.Error(t, err)

	var verr *ConfigValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseConfig_RejectsMissingSearchFields(t *testing.T) {
	bad := `{
		"roles": {
			"student": {
				"collections": [{"key": "internships", "label": "I"}]
			}
		}
	}`

	_, err := ParseConfig([]byte(bad))
	assert.Error(t, err)
}

func TestParseConfig_RejectsNonJSON(t *testing.T) {
	_, err := ParseConfig([]byte("not json"))
	assert.Error(t, err)
}

func TestConfig_CollectionLookups(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg.RoleConfig("student"))
	assert.Nil(t, cfg.RoleConfig("nobody"))

	assert.NotNil(t, cfg.CollectionConfig("admin", types.CollectionApplications))
	assert.Nil(t, cfg.CollectionConfig("student", types.CollectionStudents))
}

func TestConfig_AvailableCollectionsInConfigOrder(t *testing.T) {
	cfg := DefaultConfig()

	options := cfg.AvailableCollections("admin")
	require.Len(t, options, 3)
	assert.Equal(t, types.CollectionStudents, options[0].Key)
	assert.Equal(t, types.CollectionInternships, options[1].Key)
	assert.Equal(t, types.CollectionApplications, options[2].Key)

	assert.Nil(t, cfg.AvailableCollections("nobody"))
}

func TestDefaultConfig_PassesSchemaRoundTrip(t *testing.T) {
	// Every role in the built-in configuration must expose at least one
	// searchable collection.
	cfg := DefaultConfig()
	for _, role := range []string{"student", "recruiter", "admin"} {
		assert.NotEmpty(t, cfg.AvailableCollections(role), role)
	}
}
