package tags

import (
	"path"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	urlpkg "go.lsp.dev/uri"
)

// URIPath decodes a file URI into an absolute path.
func URIPath(uri string) (string, error) {
	parsed, err := urlpkg.Parse(uri)
	if err != nil || !strings.HasPrefix(string(parsed), urlpkg.FileScheme+"://") {
		return "", newError(PathNotAbsolute, "not a file uri", map[string]interface{}{
			"uri": uri,
		}, err)
	}
	return parsed.Filename(), nil
}

// FindFolder returns the first folder, in registration order, whose decoded
// root path is a string prefix of the decoded path of uri. The most specific
// folder is deliberately not preferred.
func FindFolder(folders []protocol.WorkspaceFolder, uri string) (protocol.WorkspaceFolder, error) {
	if filePath, err := URIPath(uri); err == nil {
		for _, folder := range folders {
			folderPath, err := URIPath(folder.URI)
			if err != nil {
				continue
			}
			if strings.HasPrefix(filePath, folderPath) {
				return folder, nil
			}
		}
	}

	roots := make([]string, len(folders))
	for index, folder := range folders {
		roots[index] = folder.URI
	}
	return protocol.WorkspaceFolder{}, newError(NoOwningWorkspace, "cannot find matching workspace folder", map[string]interface{}{
		"workspace_folders": roots,
		"uri":               uri,
	}, nil)
}

// JoinWorkspacePath joins a path relative to the folder root onto the root
// and returns it as a file URI.
func JoinWorkspacePath(root string, relative string) (string, error) {
	rootPath, err := URIPath(root)
	if err != nil {
		return "", err
	}
	joined := rootPath + "/" + relative
	if !path.IsAbs(joined) {
		return "", newError(PathNotAbsolute, "path is not absolute", map[string]interface{}{
			"cwd":  rootPath,
			"path": joined,
		}, nil)
	}
	return string(urlpkg.File(path.Clean(joined))), nil
}
