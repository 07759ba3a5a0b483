package usersapi

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

// checkDraft 服务端字段校验，独立于客户端校验再查一遍
//
// 返回自由文本的字段级错误（非符号码），空切片表示通过。
func checkDraft(d model.Draft) []model.FieldDetail {
	var details []model.FieldDetail

	switch {
	case d.Name == "":
		details = append(details, model.FieldDetail{Field: model.FieldName, Message: "Name is required"})
	case len(d.Name) < 2:
		details = append(details, model.FieldDetail{Field: model.FieldName, Message: "Name must be at least 2 characters"})
	case len(d.Name) > 50:
		details = append(details, model.FieldDetail{Field: model.FieldName, Message: "Name must be less than 50 characters"})
	case !nameRe.MatchString(d.Name):
		details = append(details, model.FieldDetail{Field: model.FieldName, Message: "Name can only contain letters and spaces"})
	}

	switch {
	case d.Email == "":
		details = append(details, model.FieldDetail{Field: model.FieldEmail, Message: "Email is required"})
	case !emailRe.MatchString(d.Email):
		details = append(details, model.FieldDetail{Field: model.FieldEmail, Message: "Invalid email address"})
	case len(d.Email) < 5:
		details = append(details, model.FieldDetail{Field: model.FieldEmail, Message: "Email must be at least 5 characters"})
	case len(d.Email) > 100:
		details = append(details, model.FieldDetail{Field: model.FieldEmail, Message: "Email must be less than 100 characters"})
	}

	switch g := strings.ToLower(d.Gender); {
	case d.Gender == "":
		details = append(details, model.FieldDetail{Field: model.FieldGender, Message: "Gender is required"})
	case g != string(model.GenderMale) && g != string(model.GenderFemale):
		details = append(details, model.FieldDetail{Field: model.FieldGender, Message: "Gender must be male or female"})
	}

	switch {
	case d.Phone == "":
		details = append(details, model.FieldDetail{Field: model.FieldPhone, Message: "Phone is required"})
	case !phoneRe.MatchString(d.Phone):
		details = append(details, model.FieldDetail{Field: model.FieldPhone, Message: "Phone can only contain digits"})
	case len(d.Phone) < 10:
		details = append(details, model.FieldDetail{Field: model.FieldPhone, Message: "Phone must be at least 10 digits"})
	case len(d.Phone) > 15:
		details = append(details, model.FieldDetail{Field: model.FieldPhone, Message: "Phone must be less than 15 digits"})
	}

	return details
}
