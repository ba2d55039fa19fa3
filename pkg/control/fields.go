package control

// Field is a field name in a Debian binary-package control file.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html
type Field string

const (
	FieldPackage      Field = "Package"
	FieldVersion      Field = "Version"
	FieldArchitecture Field = "Architecture"
	FieldMaintainer   Field = "Maintainer"
	FieldSection      Field = "Section"
	FieldPriority     Field = "Priority"
	FieldHomepage     Field = "Homepage"
	FieldDepends      Field = "Depends"
	FieldDescription  Field = "Description"
)

// Filename is the one file every DEBIAN directory must contain.
const Filename = "control"

// MaintainerScripts are the control-directory members that dpkg executes;
// they are stored executable in the control archive.
var MaintainerScripts = map[string]bool{
	"preinst":  true,
	"postinst": true,
	"prerm":    true,
	"postrm":   true,
	"config":   true,
}
