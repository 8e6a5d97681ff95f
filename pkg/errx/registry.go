package errx

// RegistryEntry describes a registered error code.
type RegistryEntry struct {
	Code        string
	Description string
}

// Error codes follow a stable 5-digit scheme where the first two digits are the
// domain and the last three digits are reserved for subcodes.
const (
	CodeCLI       = "70000"
	CodeCluster   = "71000"
	CodeTransfer  = "72000"
	CodeProvision = "73000"
	CodePipeline  = "74000"
	CodeAuth      = "75000"
	CodeAudit     = "76000"
	CodeConfig    = "79000"
)

const (
	DescCLI       = "CLI/argument validation error"
	DescCluster   = "Cluster/inventory error"
	DescTransfer  = "Image transfer error"
	DescProvision = "Repository provisioning error"
	DescPipeline  = "Migration pipeline error"
	DescAuth      = "Cluster authentication error"
	DescAudit     = "Audit sink error"
	DescConfig    = "Configuration error"
)

var registryEntries = []RegistryEntry{
	{Code: CodeCLI, Description: DescCLI},
	{Code: CodeCluster, Description: DescCluster},
	{Code: CodeTransfer, Description: DescTransfer},
	{Code: CodeProvision, Description: DescProvision},
	{Code: CodePipeline, Description: DescPipeline},
	{Code: CodeAuth, Description: DescAuth},
	{Code: CodeAudit, Description: DescAudit},
	{Code: CodeConfig, Description: DescConfig},
}

var registryMap = map[string]string{
	CodeCLI:       DescCLI,
	CodeCluster:   DescCluster,
	CodeTransfer:  DescTransfer,
	CodeProvision: DescProvision,
	CodePipeline:  DescPipeline,
	CodeAuth:      DescAuth,
	CodeAudit:     DescAudit,
	CodeConfig:    DescConfig,
}

// ErrorRegistry returns the error registry in deterministic order.
// This provides a list of all registered error codes and their descriptions.
func ErrorRegistry() []RegistryEntry {
	entries := make([]RegistryEntry, len(registryEntries))
	copy(entries, registryEntries)
	return entries
}

// DescriptionFor returns the registry description for a code.
func DescriptionFor(code string) (string, bool) {
	desc, ok := registryMap[code]
	return desc, ok
}

// IsValidCode checks if the given error code is registered.
func IsValidCode(code string) bool {
	_, ok := registryMap[code]
	return ok
}
