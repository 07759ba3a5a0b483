// Package model 定义用户管理的核心数据模型
package model

// Gender 性别枚举
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// User 用户记录
//
// ID 由服务端在创建时分配，创建前为 0；分配后不可变。
// Gender 以用户输入的原始大小写存储，校验时不区分大小写。
type User struct {
	ID     int64  `json:"id,omitempty" db:"id"`
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`
	Gender string `json:"gender" db:"gender"`
	Phone  string `json:"phone" db:"phone"`
}

// Draft 表单草稿：一条用户记录的未校验工作副本（无 ID）
//
// 生命周期：表单打开时初始化（创建模式为空，编辑模式从已有记录复制），
// 表单关闭时整体丢弃，不跨打开周期保留部分输入。
type Draft struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender string `json:"gender"`
	Phone  string `json:"phone"`
}

// DraftOf 从已有用户记录构造编辑草稿
func DraftOf(u User) Draft {
	return Draft{
		Name:   u.Name,
		Email:  u.Email,
		Gender: u.Gender,
		Phone:  u.Phone,
	}
}
