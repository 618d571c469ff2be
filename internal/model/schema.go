package model

import "github.com/invopop/jsonschema"

// SettingsSchema describes the settings file for editors and validation.
func SettingsSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Settings{})
	schema.Title = "autofix settings"
	return schema
}
