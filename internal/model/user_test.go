package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleMember, true},
		{RoleMember, RoleAdmin, false},
		{RoleMember, RoleMember, true},
		// Unknown roles fail-closed.
		{"unknown", RoleMember, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleMember, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestUserName(t *testing.T) {
	u := &User{Username: "jdoe"}
	if got := u.Name(); got != "jdoe" {
		t.Errorf("Name() = %q, want jdoe", got)
	}
	u.DisplayName = "Jane Doe"
	if got := u.Name(); got != "Jane Doe" {
		t.Errorf("Name() = %q, want Jane Doe", got)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleMember} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "owner", "Admin"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}
