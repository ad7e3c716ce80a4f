package mnotify

import (
	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/flex"
)

// MaxMessageLength is the longest SMS body MNotify accepts (three segments).
const MaxMessageLength = 460

// DefaultExclude lists helper names that are never exposed as tools.
var DefaultExclude = []string{"main", "safe_api_call", "validate_sms_request", "validate_contact_data"}

func scheduleRule() []flex.RequiredIf {
	return []flex.RequiredIf{{Param: "schedule_time", When: map[string]interface{}{"schedule": true}}}
}

// DefaultOverrides returns a fresh copy of the built-in rule sets.
func DefaultOverrides() map[string]flex.Override {
	overrides := map[string]flex.Override{
		"send_quick_bulk_sms": {
			ExpectedTypes: map[string]domain.ParamKind{
				"recipient":     domain.KindStringList,
				"sender_id":     domain.KindString,
				"message":       domain.KindString,
				"schedule":      domain.KindBoolean,
				"schedule_time": domain.KindString,
			},
			Required:   []string{"recipient", "sender_id", "message"},
			Optional:   []string{"schedule", "schedule_time"},
			RequiredIf: scheduleRule(),
			Aliases:    map[string]string{"recipients": "recipient"},
			Defaults:   map[string]interface{}{"schedule": false},
			MaxLengths: map[string]int{"message": MaxMessageLength},
		},
		"send_bulk_group_sms": {
			ExpectedTypes: map[string]domain.ParamKind{
				"group_id":      domain.KindStringList,
				"sender_id":     domain.KindString,
				"message":       domain.KindString,
				"schedule":      domain.KindBoolean,
				"schedule_time": domain.KindString,
			},
			Required:   []string{"group_id", "sender_id", "message"},
			Optional:   []string{"schedule", "schedule_time"},
			RequiredIf: scheduleRule(),
			Defaults:   map[string]interface{}{"schedule": false},
			MaxLengths: map[string]int{"message": MaxMessageLength},
		},
		"update_scheduled_sms": {
			ExpectedTypes: map[string]domain.ParamKind{
				"_id":           domain.KindString,
				"sender_id":     domain.KindString,
				"schedule_time": domain.KindString,
				"message":       domain.KindString,
			},
			Required:   []string{"_id", "sender_id", "schedule_time"},
			Optional:   []string{"message"},
			MaxLengths: map[string]int{"message": MaxMessageLength},
		},
		"add_contact": {
			ExpectedTypes: map[string]domain.ParamKind{
				"group_id":   domain.KindString,
				"phone":      domain.KindString,
				"first_name": domain.KindString,
				"last_name":  domain.KindString,
				"dob":        domain.KindString,
				"email":      domain.KindString,
			},
			Required: []string{"group_id", "phone"},
			Aliases: map[string]string{
				"group":        "group_id",
				"phone_number": "phone",
				"phoneNumber":  "phone",
			},
		},
		"update_contact": {
			ExpectedTypes: map[string]domain.ParamKind{
				"contact_id": domain.KindString,
				"phone":      domain.KindString,
				"first_name": domain.KindString,
				"last_name":  domain.KindString,
				"dob":        domain.KindString,
				"email":      domain.KindString,
				"group_id":   domain.KindString,
			},
			Required: []string{"contact_id", "phone"},
			Aliases: map[string]string{
				"group":        "group_id",
				"phone_number": "phone",
				"phoneNumber":  "phone",
				"contactId":    "contact_id",
			},
		},
	}

	// Functions that get an explicit, empty rule set.
	for _, name := range []string{
		"delete_contact", "get_contact_details",
		"add_group", "update_group", "delete_group", "get_group_details",
		"get_message_template", "update_message_template", "delete_message_template",
		"sms_delivery_report", "specific_sms_delivery_report",
	} {
		if _, ok := overrides[name]; !ok {
			overrides[name] = flex.Override{}
		}
	}
	return overrides
}

// DefaultAliases returns the per-function alias tables merged under each
// override's own aliases at registration.
func DefaultAliases() map[string]map[string]string {
	return map[string]map[string]string{
		"send_quick_bulk_sms": {"recipients": "recipient"},
		"send_bulk_group_sms": {"groups": "group_id", "group_ids": "group_id"},
	}
}
