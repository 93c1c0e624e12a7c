package models

// Keys of the permission document stored on an Account.
const (
	PermissionCRM          = "crm"
	PermissionCDI          = "cdi"
	PermissionCEFRSpeaking = "cefr_speaking"
	PermissionPlan         = "plan"
)

const DefaultPlan = "Basic"

// PlatformAccess is the set of product areas a tenant admin may use.
type PlatformAccess struct {
	CRM          bool `json:"crm"`
	CDI          bool `json:"cdi"`
	CEFRSpeaking bool `json:"cefr_speaking"`
}

// PlatformAccessPatch holds the flags supplied by a partial update. Nil means unchanged.
type PlatformAccessPatch struct {
	CRM          *bool `json:"crm"`
	CDI          *bool `json:"cdi"`
	CEFRSpeaking *bool `json:"cefr_speaking"`
}

func (p PlatformAccessPatch) Empty() bool {
	return p.CRM == nil && p.CDI == nil && p.CEFRSpeaking == nil
}

// DerivePlatformAccess reads the three product flags from a stored document.
// Only a JSON boolean true grants access; missing, null, strings and numbers do not.
func DerivePlatformAccess(doc map[string]any) PlatformAccess {
	return PlatformAccess{
		CRM:          isTrue(doc[PermissionCRM]),
		CDI:          isTrue(doc[PermissionCDI]),
		CEFRSpeaking: isTrue(doc[PermissionCEFRSpeaking]),
	}
}

// PlanOf returns the plan label, or an empty string when absent or not a string.
func PlanOf(doc map[string]any) string {
	plan, _ := doc[PermissionPlan].(string)
	return plan
}

// NewPermissionDocument builds the document stored for a freshly created account.
func NewPermissionDocument(access PlatformAccess, plan string) map[string]any {
	if plan == "" {
		plan = DefaultPlan
	}
	return map[string]any{
		PermissionCRM:          access.CRM,
		PermissionCDI:          access.CDI,
		PermissionCEFRSpeaking: access.CEFRSpeaking,
		PermissionPlan:         plan,
	}
}

// MergePlatformAccess returns a copy of doc with only the supplied flags overwritten.
// Every other key, including plan and keys this service does not know, is preserved.
func MergePlatformAccess(doc map[string]any, patch PlatformAccessPatch) map[string]any {
	merged := make(map[string]any, len(doc)+3)
	for k, v := range doc {
		merged[k] = v
	}
	if patch.CRM != nil {
		merged[PermissionCRM] = *patch.CRM
	}
	if patch.CDI != nil {
		merged[PermissionCDI] = *patch.CDI
	}
	if patch.CEFRSpeaking != nil {
		merged[PermissionCEFRSpeaking] = *patch.CEFRSpeaking
	}
	return merged
}

// WithPlan returns a copy of doc with the plan label replaced.
func WithPlan(doc map[string]any, plan string) map[string]any {
	merged := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		merged[k] = v
	}
	merged[PermissionPlan] = plan
	return merged
}

func isTrue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
