// Package rule 封装 go-playground/validator，tag 名统一为 rule.
// 请求体（授权邮箱、角色、链接 TTL）和配置结构都经这里校验.
package rule

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 优先复用 gin binding 的引擎，保证 handler 绑定
// 与手动校验走同一套规则；拿不到时才新建.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
			inst.SetTagName("rule")

			return
		}
	}

	inst = validator.New()
	inst.SetTagName("rule")
}

// Engine 返回全局 validator 引擎，首次调用时初始化.
func Engine() *validator.Validate {
	once.Do(initValidator)

	return inst
}

// RegisterValidation 注册自定义校验函数.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	return Engine().RegisterValidation(tag, fn, opts...)
}

// RegisterAlias 注册规则别名.
func RegisterAlias(alias, rules string) {
	Engine().RegisterAlias(alias, rules)
}

// ValidationErrors 字段名到可读错误信息的映射.
type ValidationErrors map[string]string

// ValidateStruct 校验整个结构体.
func ValidateStruct(s any) error {
	return Engine().Struct(s)
}

// ValidateVar 按规则校验单个变量，如 ValidateVar(addr, "required,email").
func ValidateVar(field any, tag string) error {
	return Engine().Var(field, tag)
}
