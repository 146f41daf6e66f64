package pypi

// simpleIndex is the PEP 691 JSON form of /simple/
type simpleIndex struct {
	Meta struct {
		APIVersion string `json:"api-version"`
	} `json:"meta"`
	Projects []struct {
		Name string `json:"name"`
	} `json:"projects"`
}

// projectDocument is the subset of /pypi/<package>/json the catalog reads
type projectDocument struct {
	Info projectInfo `json:"info"`
}

type projectInfo struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	Author      string            `json:"author"`
	AuthorEmail string            `json:"author_email"`
	License     string            `json:"license"`
	ProjectURLs map[string]string `json:"project_urls"`
}

// repository returns the declared repository URL, if any
func (i projectInfo) repository() string {
	for _, key := range []string{"Repository", "repository"} {
		if url := i.ProjectURLs[key]; url != "" {
			return url
		}
	}
	return ""
}
