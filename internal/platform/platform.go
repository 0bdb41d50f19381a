package platform

import "os"

// Info describes the hosting platform the process appears to run on.
type Info struct {
	Name     string `json:"name"`
	Evidence string `json:"evidence"`
}

// Detect classifies the hosting platform from well-known environment
// variables injected by each provider.
func Detect() Info {
	return detect(os.Getenv)
}

func detect(getenv func(string) string) Info {
	if getenv("K_SERVICE") != "" || getenv("CLOUD_RUN_JOB") != "" {
		return Info{Name: "cloud_run", Evidence: "K_SERVICE/CLOUD_RUN_JOB"}
	}
	if getenv("RAILWAY_ENVIRONMENT") != "" || getenv("RAILWAY_PROJECT_ID") != "" {
		return Info{Name: "railway", Evidence: "RAILWAY_ENVIRONMENT/PROJECT_ID"}
	}
	if getenv("RENDER") != "" || getenv("RENDER_SERVICE_ID") != "" {
		return Info{Name: "render", Evidence: "RENDER/RENDER_SERVICE_ID"}
	}
	if getenv("VERCEL") != "" || getenv("VERCEL_URL") != "" {
		return Info{Name: "vercel", Evidence: "VERCEL/VERCEL_URL"}
	}
	return Info{Name: "local", Evidence: "none"}
}
