package validation

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type pageQuery struct {
	Page  int    `form:"page" binding:"min=0"`
	Limit int    `form:"limit" binding:"max=100"`
	Role  string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
}

func TestToDetails_ValidationErrors(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&pageQuery{Page: -1, Limit: 500, Role: "ROOT"})

	got := ToDetails(err)

	assert.Equal(t, map[string]string{
		"page":  "must be at least 0",
		"limit": "must be at most 100",
		"role":  "must be one of: USER, ADMIN",
	}, got)
}

func TestToDetails_JSONErrors(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(json.Unmarshal([]byte(`{`), &v)))
	assert.Equal(t, map[string]string{"name": "must be a string"}, ToDetails(json.Unmarshal([]byte(`{"name":1}`), &v)))
	assert.Nil(t, ToDetails(nil))
}
