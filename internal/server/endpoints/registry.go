package endpoints

import (
	"github.com/jackzampolin/postgen/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},
		&SettingsEndpoint{},

		// Dataset endpoints
		&ListDatasetsEndpoint{},
		&GetCurrentDatasetEndpoint{},
		&SetCurrentDatasetEndpoint{},
		&ValidateDatasetEndpoint{},
		&DatasetStatsEndpoint{},
		&DeleteDatasetEndpoint{},
		&UploadDatasetEndpoint{},

		// Corpus query endpoints
		&ExamplesEndpoint{},
		&TagsEndpoint{},

		// Generation endpoints
		&GenerateEndpoint{},
		&GenerateCustomEndpoint{},
		&GenerateStudentEndpoint{},
		&HistoryEndpoint{},

		// Template endpoints
		&ListTemplatesEndpoint{},
		&SaveTemplateEndpoint{},
		&DeleteTemplateEndpoint{},
	}
}
