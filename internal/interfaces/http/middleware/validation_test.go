package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	appsub "github.com/erp/subcontracting/internal/application/subcontracting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindUpdate(t *testing.T, body string) error {
	t.Helper()
	SetupValidator()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req appsub.UpdateWorksheetRequest
	return c.ShouldBindJSON(&req)
}

func TestPartnerSelectionRule(t *testing.T) {
	p1, p2 := uuid.NewString(), uuid.NewString()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"no partners field", `{}`, false},
		{"distinct partners", `{"partners":[{"partner_id":"` + p1 + `"},{"partner_id":"` + p2 + `"}]}`, false},
		{"one default", `{"partners":[{"partner_id":"` + p1 + `","default":true},{"partner_id":"` + p2 + `"}]}`, false},
		{"duplicate partner", `{"partners":[{"partner_id":"` + p1 + `"},{"partner_id":"` + p1 + `"}]}`, true},
		{"two defaults", `{"partners":[{"partner_id":"` + p1 + `","default":true},{"partner_id":"` + p2 + `","default":true}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bindUpdate(t, tt.body)
			if tt.wantErr {
				require.Error(t, err)
				details := ValidationDetails(err)
				require.Len(t, details, 1)
				assert.Equal(t, "partners", details[0].Field)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidationDetails_UsesJSONPaths(t *testing.T) {
	err := bindUpdate(t, `{"partners":[{"partner_id":"`+uuid.NewString()+`","delay_days":-1}],"operation_type":"bogus"}`)
	require.Error(t, err)

	fields := map[string]string{}
	for _, d := range ValidationDetails(err) {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at least 0", fields["partners[0].delay_days"])
	assert.Equal(t, "Must be one of: normal consume", fields["operation_type"])
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	err := bindUpdate(t, `{"partners": "nope"}`)
	require.Error(t, err)
	assert.Empty(t, ValidationDetails(err))
}
