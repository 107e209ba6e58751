package models

import "testing"

func TestClaimsHasScope(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		scope  string
		want   bool
	}{
		{"exact", Claims{Scope: ScopeTreeRefresh}, ScopeTreeRefresh, true},
		{"among others", Claims{Scope: "openid  profile steptree:refresh"}, ScopeTreeRefresh, true},
		{"prefix only", Claims{Scope: "steptree:refreshall"}, ScopeTreeRefresh, false},
		{"empty", Claims{}, ScopeTreeRefresh, false},
		{"admin", Claims{Role: "admin"}, ScopeTreeRefresh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.claims.HasScope(tt.scope); got != tt.want {
				t.Errorf("HasScope(%q) = %v, want %v", tt.scope, got, tt.want)
			}
		})
	}
}
