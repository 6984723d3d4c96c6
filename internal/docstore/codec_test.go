package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalData_RoundTripsTypes(t *testing.T) {
	created := time.Date(2024, 3, 9, 14, 30, 0, 123000000, time.UTC)
	in := map[string]interface{}{
		"title":     "Lisbon",
		"travelers": 3,
		"budget":    1250.5,
		"active":    true,
		"created":   created,
		"tags":      []string{"beach", "food"},
		"days": []map[string]interface{}{
			{"day": 1, "date": created},
		},
		"nothing": nil,
	}

	raw, err := MarshalData(in)
	require.NoError(t, err)
	out, err := UnmarshalData(raw)
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", out["title"])
	assert.Equal(t, int64(3), out["travelers"])
	assert.Equal(t, 1250.5, out["budget"])
	assert.Equal(t, true, out["active"])
	assert.True(t, created.Equal(out["created"].(time.Time)))
	assert.Equal(t, []interface{}{"beach", "food"}, out["tags"])
	assert.Nil(t, out["nothing"])

	days := out["days"].([]interface{})
	day := days[0].(map[string]interface{})
	assert.Equal(t, int64(1), day["day"])
	assert.IsType(t, time.Time{}, day["date"])
}

func TestUnmarshalData_RejectsNonObject(t *testing.T) {
	_, err := UnmarshalData([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestDecode_IntoStruct(t *testing.T) {
	type target struct {
		Name      string    `json:"name"`
		Count     int       `json:"count"`
		CreatedAt time.Time `json:"created_at"`
	}
	now := time.Now().UTC().Truncate(time.Second)

	var out target
	require.NoError(t, Decode(map[string]interface{}{"name": "x", "count": int64(4), "created_at": now}, &out))
	assert.Equal(t, "x", out.Name)
	assert.Equal(t, 4, out.Count)
	assert.True(t, now.Equal(out.CreatedAt))
}

func TestSetPath(t *testing.T) {
	data := map[string]interface{}{"preferences": map[string]interface{}{"currency": "EUR"}}

	setPath(data, "preferences.language", "pt")
	setPath(data, "preferences.currency", DeleteField)
	setPath(data, "missing.deep", DeleteField)

	assert.Equal(t, map[string]interface{}{"language": "pt"}, data["preferences"])
	_, exists := data["missing"]
	assert.False(t, exists)
}

func TestCompareValues(t *testing.T) {
	c, ok := compareValues(int64(2), 2.5)
	require.True(t, ok)
	assert.Equal(t, -1, c)

	_, ok = compareValues("a", int64(1))
	assert.False(t, ok)

	early := time.Unix(0, 0).UTC()
	c, ok = compareValues(early.Add(time.Hour), early)
	require.True(t, ok)
	assert.Equal(t, 1, c)
}
