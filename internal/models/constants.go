package models

// SubmissionStatus константы статусов заявок.
// Переходов между статусами пока нет: записи создаются как pending,
// остальные значения зарезервированы для бота.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusAccepted = "accepted"
	SubmissionStatusRejected = "rejected"
)

// MembershipRole константы ролей участника гильдии.
const (
	MembershipRoleAdmin  = "admin"
	MembershipRoleMember = "member"
)

// ValidMembershipRoles список валидных ролей.
var ValidMembershipRoles = map[string]struct{}{
	MembershipRoleAdmin:  {},
	MembershipRoleMember: {},
}
