// Package form 用户表单工作流：字段校验、表单状态、提交协调
package form

import (
	"regexp"
	"strings"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
)

var (
	nameRe  = regexp.MustCompile(`^[A-Za-z\s]*$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]+$`)
)

// Validate 校验表单草稿
//
// 纯函数：无 I/O、无副作用、确定性。四个字段各自独立检查，
// 每个字段最多产生一个错误码（按优先级取第一个命中的规则）；
// 全部通过时原样返回草稿，不做任何裁剪或归一化。
//
// 注意 email 的优先级是 required > format > min > max，
// 与 name/phone 的「长度先于格式」不一致；这是对线上行为的
// 刻意保留（`a@b` 报 format 而不是 min，属可观察行为）。
func Validate(d model.Draft) (model.Draft, model.FieldErrors) {
	errs := model.FieldErrors{}

	switch {
	case d.Name == "":
		errs[model.FieldName] = model.CodeRequired
	case len(d.Name) < 2:
		errs[model.FieldName] = model.CodeMin
	case len(d.Name) > 50:
		errs[model.FieldName] = model.CodeMax
	case !nameRe.MatchString(d.Name):
		errs[model.FieldName] = model.CodeFormat
	}

	switch {
	case d.Email == "":
		errs[model.FieldEmail] = model.CodeRequired
	case !emailRe.MatchString(d.Email):
		errs[model.FieldEmail] = model.CodeFormat
	case len(d.Email) < 5:
		errs[model.FieldEmail] = model.CodeMin
	case len(d.Email) > 100:
		errs[model.FieldEmail] = model.CodeMax
	}

	switch g := strings.ToLower(d.Gender); {
	case d.Gender == "":
		errs[model.FieldGender] = model.CodeRequired
	case g != string(model.GenderMale) && g != string(model.GenderFemale):
		errs[model.FieldGender] = model.CodeInvalid
	}

	switch {
	case d.Phone == "":
		errs[model.FieldPhone] = model.CodeRequired
	case !phoneRe.MatchString(d.Phone):
		errs[model.FieldPhone] = model.CodeFormat
	case len(d.Phone) < 10:
		errs[model.FieldPhone] = model.CodeMin
	case len(d.Phone) > 15:
		errs[model.FieldPhone] = model.CodeMax
	}

	if len(errs) > 0 {
		return model.Draft{}, errs
	}
	return d, nil
}
