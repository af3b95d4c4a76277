package user

import (
	"testing"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/pkg/auth/jwt"
)

func TestParseRole(t *testing.T) {
	if ParseRole("mentor") != RoleMentor {
		t.Error("mentor not parsed")
	}
	if ParseRole("admin") != RoleMentee || ParseRole("") != RoleMentee {
		t.Error("Unknown roles must default to mentee")
	}
}

func TestFromPayload_SubjectFallback(t *testing.T) {
	p := &jwt.Payload{Name: "Ada", Role: "mentor"}
	p.Subject = "u1"

	u := FromPayload(p)
	if u.ID != "u1" || u.Role != RoleMentor || u.Name != "Ada" {
		t.Errorf("Unexpected user %+v", u)
	}
}

func TestFromRecord(t *testing.T) {
	u := FromRecord(mapping.User.Apply(map[string]any{"_id": "u2", "name": "Lin"}))

	if u.ID != "u2" || u.Role != RoleMentee || u.Avatar != mapping.PlaceholderPhoto {
		t.Errorf("Unexpected user %+v", u)
	}
}
