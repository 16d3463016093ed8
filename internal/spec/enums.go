// SPDX-License-Identifier: AGPL-3.0-or-later

package spec

// Allowed enumerated values, in documentation order.
var (
	ProjectTypes = []ProjectType{TypeBackendAPI, TypeFrontend, TypeCLI, TypeLibrary, TypeMonorepo, TypeStaticSite}
	Languages    = []Language{LangTypeScript, LangJavaScript, LangPython, LangGo, LangRust}
	Runtimes     = []Runtime{
		RuntimeNode16, RuntimeNode18, RuntimeNode20,
		RuntimePython39, RuntimePython310, RuntimePython311,
		RuntimeGo, RuntimeRust,
	}
	Deployments = []Deployment{DeployContainer, DeployServerless, DeployStatic, DeployVM}
	Risks       = []Risk{RiskPublic, RiskInternal, RiskRegulated, RiskOSS}
	Levels      = []Level{LevelPermissive, LevelStrict, LevelEnforced}
)

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (t ProjectType) Valid() bool { return contains(ProjectTypes, t) }
func (l Language) Valid() bool    { return contains(Languages, l) }
func (r Runtime) Valid() bool     { return contains(Runtimes, r) }
func (d Deployment) Valid() bool  { return contains(Deployments, d) }
func (r Risk) Valid() bool        { return contains(Risks, r) }
func (l Level) Valid() bool       { return contains(Levels, l) }

// IsNode reports whether the language builds on the Node toolchain.
func (l Language) IsNode() bool {
	return l == LangTypeScript || l == LangJavaScript
}
