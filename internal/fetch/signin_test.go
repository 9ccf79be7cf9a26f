package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSignInWall(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"google accounts title", `<html><head><title>Sign in - Google Accounts</title></head></html>`, true},
		{"service login link", `<a href="https://accounts.google.com/ServiceLogin?continue=x">x</a>`, true},
		{"password form", `<form action="/session"><input type="password" name="p"></form>`, true},
		{"login action", `<form action="/users/login"><input name="u"></form>`, true},
		{"plain posting", `<main><h1>Backend Engineer</h1><form action="/apply"><input name="cv"></form></main>`, false},
		{"empty", ``, false},
		{"header login on job page", `<header><form action="/login"><input name="u"><input type="password"></form></header>
<main><div class="job-description">Backend Engineer. 3+ years Go.</div></main>`, false},
		{"login form beside long posting", `<form action="/login"><input type="password"></form><main><p>` +
			strings.Repeat("We build payment infrastructure in Go. ", 10) + `</p></main>`, false},
		{"login page with short copy", `<h1>Welcome back</h1><p>Sign in to continue.</p>
<form action="/login"><input name="u"><input type="password"></form>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSignInWall(tt.html))
		})
	}
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html; charset=utf-8"))
	assert.True(t, IsHTML("application/xhtml+xml"))
	assert.False(t, IsHTML("application/pdf"))
	assert.False(t, IsHTML(""))
}
