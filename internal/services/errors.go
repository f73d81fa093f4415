package services

import "errors"

var (
	ErrRuleNotFound       = errors.New("assignment rule not found")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrDealNotFound       = errors.New("deal not found")
	ErrContactNotFound    = errors.New("contact not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrMemberNotFound     = errors.New("team member not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
