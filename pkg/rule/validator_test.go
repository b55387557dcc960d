package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/rule"
)

// TestEngineSingleton Engine 返回同一个实例.
func TestEngineSingleton(t *testing.T) {
	a := rule.Engine()
	b := rule.Engine()

	if a == nil || a != b {
		t.Fatalf("engine not a singleton: %p vs %p", a, b)
	}
}

// TestGrantRequestValidation 邮箱授权请求的 rule 标签校验.
func TestGrantRequestValidation(t *testing.T) {
	valid := types.UpsertGrantRequest{Email: "reader@example.com", Role: "viewer"}
	if err := rule.ValidateStruct(valid); err != nil {
		t.Fatalf("valid grant rejected: %v", err)
	}

	cases := []struct {
		name string
		req  types.UpsertGrantRequest
	}{
		{"missing email", types.UpsertGrantRequest{Role: "viewer"}},
		{"malformed email", types.UpsertGrantRequest{Email: "not-an-address", Role: "viewer"}},
		{"missing role", types.UpsertGrantRequest{Email: "reader@example.com"}},
		{"owner role not grantable", types.UpsertGrantRequest{Email: "reader@example.com", Role: "owner"}},
	}

	for _, tc := range cases {
		if err := rule.ValidateStruct(tc.req); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

// TestLinkRequestValidation 链接请求限定角色枚举，有效期不得为负.
func TestLinkRequestValidation(t *testing.T) {
	if err := rule.ValidateStruct(types.UpsertLinkRequest{Role: "editor", ExpireDays: 7}); err != nil {
		t.Fatalf("valid link request rejected: %v", err)
	}

	if err := rule.ValidateStruct(types.UpsertLinkRequest{Role: "admin"}); err == nil {
		t.Error("unknown role must fail")
	}

	if err := rule.ValidateStruct(types.UpsertLinkRequest{Role: "viewer", ExpireDays: -1}); err == nil {
		t.Error("negative expire_days must fail")
	}
}

// TestValidateVarEmail 单变量校验，撤销授权路径用它检查路径参数里的邮箱.
func TestValidateVarEmail(t *testing.T) {
	if err := rule.ValidateVar("owner@example.com", "required,email"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}

	if err := rule.ValidateVar("@@", "required,email"); err == nil {
		t.Error("malformed email must fail")
	}
}

// TestRegisterValidationAndAlias 自定义规则与别名注册后即可用.
func TestRegisterValidationAndAlias(t *testing.T) {
	err := rule.RegisterValidation("lowercase_only", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		for _, r := range s {
			if r >= 'A' && r <= 'Z' {
				return false
			}
		}

		return true
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	if err := rule.ValidateVar("shared@example.com", "lowercase_only"); err != nil {
		t.Errorf("lowercase value rejected: %v", err)
	}

	if err := rule.ValidateVar("Shared@example.com", "lowercase_only"); err == nil {
		t.Error("uppercase value must fail")
	}

	rule.RegisterAlias("grant_email", "required,email,lowercase_only")

	if err := rule.ValidateVar("ok@example.com", "grant_email"); err != nil {
		t.Errorf("alias rejected valid value: %v", err)
	}

	if err := rule.ValidateVar("Bad@example.com", "grant_email"); err == nil {
		t.Error("alias must apply all chained rules")
	}
}
