package mnotify

import (
	"net/http"

	"github.com/i2y/smsbridge/internal/domain"
)

// endpoint ties one domain function to an MNotify route. Request structs are
// decoded from the Binding by "mapstructure" tags and sent by "wire" tags;
// wire names that match a {placeholder} in path are substituted, not sent.
type endpoint struct {
	name        string
	description string
	params      []domain.Param
	method      string
	path        string
	query       []string
	newRequest  func() interface{}
}

type smsRequest struct {
	Recipient    []string `mapstructure:"recipient" wire:"recipient,omitempty"`
	GroupID      []string `mapstructure:"group_id" wire:"group_id,omitempty"`
	SenderID     string   `mapstructure:"sender_id" wire:"sender"`
	Message      string   `mapstructure:"message" wire:"message"`
	Schedule     bool     `mapstructure:"schedule" wire:"is_schedule"`
	ScheduleTime string   `mapstructure:"schedule_time" wire:"schedule_date,omitempty"`
}

type scheduledUpdateRequest struct {
	ID           string `mapstructure:"_id" wire:"id"`
	SenderID     string `mapstructure:"sender_id" wire:"sender"`
	Message      string `mapstructure:"message" wire:"message,omitempty"`
	ScheduleTime string `mapstructure:"schedule_time" wire:"schedule_date"`
}

type contactRequest struct {
	ContactID string `mapstructure:"contact_id" wire:"contact_id,omitempty"`
	GroupID   string `mapstructure:"group_id" wire:"group_id,omitempty"`
	Phone     string `mapstructure:"phone" wire:"phone,omitempty"`
	Title     string `mapstructure:"title" wire:"title,omitempty"`
	FirstName string `mapstructure:"first_name" wire:"firstname,omitempty"`
	LastName  string `mapstructure:"last_name" wire:"lastname,omitempty"`
	Email     string `mapstructure:"email" wire:"email,omitempty"`
	DOB       string `mapstructure:"dob" wire:"dob,omitempty"`
}

type groupRequest struct {
	GroupID   string `mapstructure:"group_id" wire:"group_id,omitempty"`
	GroupName string `mapstructure:"group_name" wire:"group_name,omitempty"`
}

type templateRequest struct {
	TemplateID string `mapstructure:"template_id" wire:"template_id,omitempty"`
	Title      string `mapstructure:"title" wire:"title,omitempty"`
	Content    string `mapstructure:"content" wire:"content,omitempty"`
}

type campaignReportRequest struct {
	CampaignID string `mapstructure:"campaign_id" wire:"campaign_id"`
	Status     string `mapstructure:"status" wire:"status"`
}

type messageStatusRequest struct {
	MessageID string `mapstructure:"message_id" wire:"message_id"`
}

type periodReportRequest struct {
	From string `mapstructure:"from" wire:"from"`
	To   string `mapstructure:"to" wire:"to"`
}

type senderIDRequest struct {
	SenderName string `mapstructure:"sender_name" wire:"sender_name"`
	Purpose    string `mapstructure:"purpose" wire:"purpose,omitempty"`
}

func str(name, description string, required bool) domain.Param {
	return domain.Param{Name: name, Kind: domain.KindString, Required: required, Description: description}
}

var scheduleParams = []domain.Param{
	{Name: "schedule", Kind: domain.KindBoolean, Default: false, Description: "Send later instead of immediately"},
	str("schedule_time", "Send time as 'YYYY-MM-DD HH:MM'; required when schedule is true", false),
}

var contactParams = []domain.Param{
	str("phone", "Contact phone number", true),
	str("title", "Title such as Mr or Mrs", false),
	str("first_name", "First name", false),
	str("last_name", "Last name", false),
	str("email", "Email address", false),
	str("dob", "Date of birth as YYYY-MM-DD", false),
}

func concat(groups ...[]domain.Param) []domain.Param {
	var out []domain.Param
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var endpoints = []endpoint{
	// Messaging
	{
		name:        "send_quick_bulk_sms",
		description: "Send an SMS to one or more phone numbers, now or at a scheduled time.",
		params: concat([]domain.Param{
			{Name: "recipient", Kind: domain.KindStringList, Required: true, Description: "Phone numbers to send to"},
			str("sender_id", "Registered sender ID", true),
			str("message", "Message text, at most 460 characters", true),
		}, scheduleParams),
		method:     http.MethodPost,
		path:       "/sms/quick",
		newRequest: func() interface{} { return &smsRequest{} },
	},
	{
		name:        "send_bulk_group_sms",
		description: "Send an SMS to every contact in one or more groups.",
		params: concat([]domain.Param{
			{Name: "group_id", Kind: domain.KindStringList, Required: true, Description: "Group IDs to send to"},
			str("sender_id", "Registered sender ID", true),
			str("message", "Message text, at most 460 characters", true),
		}, scheduleParams),
		method:     http.MethodPost,
		path:       "/sms/group",
		newRequest: func() interface{} { return &smsRequest{} },
	},
	{
		name:        "get_scheduled_sms",
		description: "List messages that are scheduled but not yet sent.",
		method:      http.MethodGet,
		path:        "/scheduled",
	},
	{
		name:        "update_scheduled_sms",
		description: "Change the sender, text or send time of a scheduled message.",
		params: []domain.Param{
			str("_id", "Scheduled message ID", true),
			str("sender_id", "Registered sender ID", true),
			str("schedule_time", "New send time as 'YYYY-MM-DD HH:MM'", true),
			str("message", "New message text", false),
		},
		method:     http.MethodPost,
		path:       "/scheduled/{id}",
		newRequest: func() interface{} { return &scheduledUpdateRequest{} },
	},

	// Contacts
	{
		name:        "add_contact",
		description: "Add a contact to a group.",
		params:      concat([]domain.Param{str("group_id", "Group to add the contact to", true)}, contactParams),
		method:      http.MethodPost,
		path:        "/contact/{group_id}",
		newRequest:  func() interface{} { return &contactRequest{} },
	},
	{
		name:        "update_contact",
		description: "Update an existing contact.",
		params: concat([]domain.Param{
			str("contact_id", "Contact ID", true),
			str("group_id", "Group the contact belongs to", false),
		}, contactParams),
		method:     http.MethodPut,
		path:       "/contact/{contact_id}",
		newRequest: func() interface{} { return &contactRequest{} },
	},
	{
		name:        "delete_contact",
		description: "Remove a contact from a group.",
		params: []domain.Param{
			str("contact_id", "Contact ID", true),
			str("group_id", "Group ID", true),
		},
		method:     http.MethodDelete,
		path:       "/contact/{contact_id}/{group_id}",
		newRequest: func() interface{} { return &contactRequest{} },
	},
	{
		name:        "get_contact_details",
		description: "Fetch a single contact.",
		params:      []domain.Param{str("contact_id", "Contact ID", true)},
		method:      http.MethodGet,
		path:        "/contact/{contact_id}",
		newRequest:  func() interface{} { return &contactRequest{} },
	},
	{
		name:        "get_all_contacts",
		description: "List all contacts.",
		method:      http.MethodGet,
		path:        "/contact",
	},

	// Groups
	{
		name:        "add_group",
		description: "Create a contact group.",
		params:      []domain.Param{str("group_name", "Name of the new group", true)},
		method:      http.MethodPost,
		path:        "/group",
		newRequest:  func() interface{} { return &groupRequest{} },
	},
	{
		name:        "update_group",
		description: "Rename a contact group.",
		params: []domain.Param{
			str("group_id", "Group ID", true),
			str("group_name", "New group name", true),
		},
		method:     http.MethodPut,
		path:       "/group/{group_id}",
		newRequest: func() interface{} { return &groupRequest{} },
	},
	{
		name:        "delete_group",
		description: "Delete a contact group.",
		params:      []domain.Param{str("group_id", "Group ID", true)},
		method:      http.MethodDelete,
		path:        "/group/{group_id}",
		newRequest:  func() interface{} { return &groupRequest{} },
	},
	{
		name:        "get_group_details",
		description: "Fetch a single contact group.",
		params:      []domain.Param{str("group_id", "Group ID", true)},
		method:      http.MethodGet,
		path:        "/group/{group_id}",
		newRequest:  func() interface{} { return &groupRequest{} },
	},
	{
		name:        "get_all_groups",
		description: "List all contact groups.",
		method:      http.MethodGet,
		path:        "/group",
	},

	// Templates
	{
		name:        "get_all_message_templates",
		description: "List all message templates.",
		method:      http.MethodGet,
		path:        "/template",
	},
	{
		name:        "get_message_template",
		description: "Fetch a single message template.",
		params:      []domain.Param{str("template_id", "Template ID", true)},
		method:      http.MethodGet,
		path:        "/template/{template_id}",
		newRequest:  func() interface{} { return &templateRequest{} },
	},
	{
		name:        "add_message_template",
		description: "Create a message template.",
		params: []domain.Param{
			str("title", "Template title", true),
			str("content", "Template text", true),
		},
		method:     http.MethodPost,
		path:       "/template",
		newRequest: func() interface{} { return &templateRequest{} },
	},
	{
		name:        "update_message_template",
		description: "Update a message template.",
		params: []domain.Param{
			str("template_id", "Template ID", true),
			str("title", "Template title", true),
			str("content", "Template text", true),
		},
		method:     http.MethodPut,
		path:       "/template/{template_id}",
		newRequest: func() interface{} { return &templateRequest{} },
	},
	{
		name:        "delete_message_template",
		description: "Delete a message template.",
		params:      []domain.Param{str("template_id", "Template ID", true)},
		method:      http.MethodDelete,
		path:        "/template/{template_id}",
		newRequest:  func() interface{} { return &templateRequest{} },
	},

	// Reports
	{
		name:        "sms_delivery_report",
		description: "Delivery report for every message in a campaign.",
		params: []domain.Param{
			str("campaign_id", "Campaign ID returned when the SMS was sent", true),
			{Name: "status", Kind: domain.KindString, Default: "all", Description: "Filter: all, delivered, failed, pending"},
		},
		method:     http.MethodGet,
		path:       "/campaign/{campaign_id}/{status}",
		newRequest: func() interface{} { return &campaignReportRequest{Status: "all"} },
	},
	{
		name:        "specific_sms_delivery_report",
		description: "Delivery status of a single message.",
		params:      []domain.Param{str("message_id", "Message ID", true)},
		method:      http.MethodGet,
		path:        "/status/{message_id}",
		newRequest:  func() interface{} { return &messageStatusRequest{} },
	},
	{
		name:        "periodic_sms_delivery_report",
		description: "Delivery reports for messages sent in a date range.",
		params: []domain.Param{
			str("from", "Start date as YYYY-MM-DD", true),
			str("to", "End date as YYYY-MM-DD", true),
		},
		method:     http.MethodGet,
		path:       "/report",
		query:      []string{"from", "to"},
		newRequest: func() interface{} { return &periodReportRequest{} },
	},

	// Account
	{
		name:        "check_sms_balance",
		description: "Remaining SMS credit on the account.",
		method:      http.MethodGet,
		path:        "/balance/sms",
	},
	{
		name:        "check_sender_id",
		description: "Approval status of a sender ID.",
		params:      []domain.Param{str("sender_name", "Sender ID to check", true)},
		method:      http.MethodPost,
		path:        "/senderid/status",
		newRequest:  func() interface{} { return &senderIDRequest{} },
	},
	{
		name:        "register_sender_id",
		description: "Submit a new sender ID for approval.",
		params: []domain.Param{
			str("sender_name", "Sender ID, at most 11 characters", true),
			str("purpose", "What messages will be sent with it", true),
		},
		method:     http.MethodPost,
		path:       "/senderid/register",
		newRequest: func() interface{} { return &senderIDRequest{} },
	},
}
