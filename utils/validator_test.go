package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmailFormat(t *testing.T) {
	assert.NoError(t, ValidateEmailFormat("user@example.com"))
	assert.NoError(t, ValidateEmailFormat("first.last+tag@sub.example.co"))

	assert.Error(t, ValidateEmailFormat("not-an-email"))
	assert.Error(t, ValidateEmailFormat(""))
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Email  string `validate:"required,email"`
		Status string `validate:"oneof=active inactive"`
	}

	assert.NoError(t, ValidateStruct(input{Email: "a@example.com", Status: "active"}))
	assert.Error(t, ValidateStruct(input{Email: "bad", Status: "active"}))
	assert.Error(t, ValidateStruct(input{Email: "a@example.com", Status: "archived"}))
}
