package scanner

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extCategory is the static extension → Category table (spec §4.3, §3).
// Order matches original_source/src/scanner.rs's match arms: programming
// languages, then markup/data, then build/config, then archives, then media,
// then binary.
var extCategory = map[string]Category{
	"rs":                           CategoryRust,
	"py": CategoryPython, "pyw": CategoryPython, "pyx": CategoryPython, "pyi": CategoryPython,
	"js": CategoryJavaScript, "mjs": CategoryJavaScript, "cjs": CategoryJavaScript,
	"ts": CategoryTypeScript, "tsx": CategoryTypeScript,
	"java": CategoryJava, "class": CategoryJava, "jar": CategoryJava,
	"c": CategoryC, "h": CategoryC,
	"cpp": CategoryCpp, "cc": CategoryCpp, "cxx": CategoryCpp, "hpp": CategoryCpp, "hxx": CategoryCpp,
	"go": CategoryGo,
	"rb": CategoryRuby,
	"php": CategoryPHP,
	"sh": CategoryShell, "bash": CategoryShell, "zsh": CategoryShell, "fish": CategoryShell,
	"cs":    CategoryCSharp,
	"kt":    CategoryKotlin, "kts": CategoryKotlin,
	"swift": CategorySwift,
	"scala": CategoryScala,
	"lua":   CategoryLua,
	"pl":    CategoryPerl, "pm": CategoryPerl,
	"hs":    CategoryHaskell,
	"ex":    CategoryElixir, "exs": CategoryElixir,
	"zig":   CategoryZig,

	"md": CategoryMarkdown, "markdown": CategoryMarkdown,
	"html": CategoryHTML, "htm": CategoryHTML,
	"css": CategoryCSS, "scss": CategoryCSS, "sass": CategoryCSS, "less": CategoryCSS,
	"json": CategoryJSON, "jsonc": CategoryJSON,
	"yaml": CategoryYAML, "yml": CategoryYAML,
	"xml": CategoryXML, "svg": CategoryXML,
	"toml": CategoryTOML,
	"csv":  CategoryCSV,
	"sql":  CategorySQL,
	"txt":  CategoryText,

	"dockerfile": CategoryDockerfile,
	"gitignore": CategoryGitConfig, "gitconfig": CategoryGitConfig, "gitmodules": CategoryGitConfig,

	"zip": CategoryArchive, "tar": CategoryArchive, "gz": CategoryArchive, "bz2": CategoryArchive,
	"xz": CategoryArchive, "7z": CategoryArchive, "rar": CategoryArchive,

	"jpg": CategoryImage, "jpeg": CategoryImage, "png": CategoryImage, "gif": CategoryImage,
	"bmp": CategoryImage, "ico": CategoryImage, "webp": CategoryImage,
	"mp4": CategoryVideo, "avi": CategoryVideo, "mkv": CategoryVideo, "mov": CategoryVideo,
	"wmv": CategoryVideo, "flv": CategoryVideo, "webm": CategoryVideo,
	"mp3": CategoryAudio, "wav": CategoryAudio, "flac": CategoryAudio, "aac": CategoryAudio,
	"ogg": CategoryAudio, "wma": CategoryAudio,
	"ttf": CategoryFont, "otf": CategoryFont, "woff": CategoryFont, "woff2": CategoryFont,

	"exe": CategoryBinary, "dll": CategoryBinary, "so": CategoryBinary, "dylib": CategoryBinary,
	"o": CategoryBinary, "a": CategoryBinary,

	"lock": CategoryLockfile,
}

// filenameCategory is the exact-filename fallback table used when an entry
// has no (or an unrecognised) extension (spec §4.3 "dispatch on exact
// filename").
var filenameCategory = map[string]Category{
	"Makefile": CategoryMakefile, "makefile": CategoryMakefile, "GNUmakefile": CategoryMakefile,
	"Dockerfile":       CategoryDockerfile,
	".gitignore":       CategoryGitConfig,
	".gitconfig":       CategoryGitConfig,
	"LICENSE":          CategoryLicense,
	"LICENSE.txt":      CategoryLicense,
	"LICENSE.md":       CategoryLicense,
	"COPYING":          CategoryLicense,
	"Cargo.lock":       CategoryLockfile,
	"package-lock.json": CategoryLockfile,
	"yarn.lock":        CategoryLockfile,
	"go.sum":           CategoryLockfile,
	".github":          CategoryCI,
}

// systemFileNames are names that are always SystemFile regardless of
// extension (original_source scanner.rs: swap.img, swapfile, vmlinuz*, initrd*).
func isSystemFileName(name string) bool {
	if name == "swap.img" || name == "swapfile" {
		return true
	}
	return strings.HasPrefix(name, "vmlinuz") || strings.HasPrefix(name, "initrd")
}

// categorize implements spec §4.3's dispatch order: directories are always
// Unknown; system filenames first; then extension (case-folded); then exact
// filename; then the executable bit; then a mimetype sniff as a final
// fallback before giving up to Unknown. The mimetype step is this module's
// addition over the original (spec §10 DOMAIN STACK) — original_source has
// no equivalent collaborator, it simply returns Unknown past the
// executable-bit check.
func categorize(name string, isDir, isExecutable bool, sniff func() ([]byte, bool)) Category {
	if isDir {
		return CategoryUnknown
	}
	if isSystemFileName(name) {
		return CategorySystemFile
	}

	if ext := extOf(name); ext != "" {
		if cat, ok := extCategory[strings.ToLower(ext)]; ok {
			return cat
		}
	}

	if cat, ok := filenameCategory[name]; ok {
		return cat
	}

	if isExecutable {
		return CategoryBinary
	}

	if sniff != nil {
		if data, ok := sniff(); ok {
			mt := mimetype.Detect(data)
			if cat, ok := categoryFromMIME(mt.String()); ok {
				return cat
			}
		}
	}

	return CategoryUnknown
}

func categoryFromMIME(mime string) (Category, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return CategoryImage, true
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo, true
	case strings.HasPrefix(mime, "audio/"):
		return CategoryAudio, true
	case strings.HasPrefix(mime, "text/"):
		return CategoryText, true
	case mime == "application/zip" || mime == "application/x-tar" || mime == "application/gzip":
		return CategoryArchive, true
	case strings.HasPrefix(mime, "application/octet-stream"):
		return CategoryBinary, true
	default:
		return CategoryUnknown, false
	}
}
