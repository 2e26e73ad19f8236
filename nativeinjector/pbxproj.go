package nativeinjector

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"howett.net/plist"

	"github.com/shoutem/firebase-prebuild/common"
)

const (
	isaBuildFile      = "PBXBuildFile"
	isaFileReference  = "PBXFileReference"
	isaGroup          = "PBXGroup"
	isaProject        = "PBXProject"
	isaResourcesPhase = "PBXResourcesBuildPhase"

	resourcesGroupName = "Resources"
	defaultBuildMask   = "2147483647"
)

type pbxObject = map[string]interface{}

// XcodeProject is a parsed project.pbxproj. The file is an OpenStep property list with
// every object stored by id in the "objects" dictionary. Changes are written back by
// splicing them into the original text, comments and formatting of untouched objects
// are kept byte for byte.
type XcodeProject struct {
	Path string
	root map[string]interface{}
	raw  []byte

	added     []string
	appended  []listAppend
	rewritten map[string]bool
}

type listAppend struct {
	objectID string
	key      string
	ids      []string
}

func OpenXcodeProject(path string) (*XcodeProject, error) {
	//nolint:gosec // Path comes from globbing the ios directory
	cont, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseXcodeProject(path, cont)
}

func ParseXcodeProject(path string, cont []byte) (*XcodeProject, error) {
	root := map[string]interface{}{}
	if _, err := plist.Unmarshal(cont, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, err := scanText(cont); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, ok := root["objects"].(map[string]interface{}); !ok {
		return nil, fmt.Errorf("%s has no objects section", path)
	}
	if _, ok := root["rootObject"].(string); !ok {
		return nil, fmt.Errorf("%s has no rootObject", path)
	}
	return &XcodeProject{Path: path, root: root, raw: cont, rewritten: map[string]bool{}}, nil
}

func (p *XcodeProject) objects() map[string]interface{} {
	return p.root["objects"].(map[string]interface{})
}

func (p *XcodeProject) object(id string) (pbxObject, bool) {
	obj, ok := p.objects()[id].(map[string]interface{})
	return obj, ok
}

func (p *XcodeProject) project() (pbxObject, error) {
	project, ok := p.object(p.root["rootObject"].(string))
	if !ok {
		return nil, fmt.Errorf("%s: root object is missing", p.Path)
	}
	return project, nil
}

func stringList(obj pbxObject, key string) []string {
	values, _ := obj[key].([]interface{})
	res := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			res = append(res, s)
		}
	}
	return res
}

func appendID(obj pbxObject, key, id string) {
	values, _ := obj[key].([]interface{})
	obj[key] = append(values, id)
}

func (p *XcodeProject) isNew(id string) bool {
	for _, added := range p.added {
		if added == id {
			return true
		}
	}
	return false
}

func (p *XcodeProject) addObject(id string, obj pbxObject) {
	p.objects()[id] = obj
	p.added = append(p.added, id)
}

// appendTo adds id to the list key of the object objectID.
func (p *XcodeProject) appendTo(objectID string, obj pbxObject, key, id string) {
	appendID(obj, key, id)
	for i := range p.appended {
		if p.appended[i].objectID == objectID && p.appended[i].key == key {
			p.appended[i].ids = append(p.appended[i].ids, id)
			return
		}
	}
	p.appended = append(p.appended, listAppend{objectID: objectID, key: key, ids: []string{id}})
}

// FirstTarget returns the id of the first target of the project.
func (p *XcodeProject) FirstTarget() (string, error) {
	project, err := p.project()
	if err != nil {
		return "", err
	}
	targets := stringList(project, "targets")
	if len(targets) == 0 {
		return "", fmt.Errorf("%s has no targets", p.Path)
	}
	if _, ok := p.object(targets[0]); !ok {
		return "", fmt.Errorf("%s: target %s is missing", p.Path, targets[0])
	}
	return targets[0], nil
}

// generateID returns an unused 24 digit object id, the format Xcode uses.
func (p *XcodeProject) generateID() string {
	for {
		id := uuid.New()
		candidate := strings.ToUpper(hex.EncodeToString(id[:12]))
		if _, exists := p.objects()[candidate]; !exists {
			return candidate
		}
	}
}

func (p *XcodeProject) findObject(match func(pbxObject) bool) (string, pbxObject, bool) {
	for id, v := range p.objects() {
		if obj, ok := v.(map[string]interface{}); ok && match(obj) {
			return id, obj, true
		}
	}
	return "", nil, false
}

func isa(name string) func(pbxObject) bool {
	return func(obj pbxObject) bool {
		return obj["isa"] == name
	}
}

// FileReference returns the id of the file reference pointing at path.
func (p *XcodeProject) FileReference(path string) (string, bool) {
	id, _, ok := p.findObject(func(obj pbxObject) bool {
		return isa(isaFileReference)(obj) && obj["path"] == path
	})
	return id, ok
}

// HasFile reports whether path is referenced by the project.
func (p *XcodeProject) HasFile(path string) bool {
	_, ok := p.FileReference(path)
	return ok
}

func (p *XcodeProject) resourcesGroup() (string, pbxObject, error) {
	id, group, ok := p.findObject(func(obj pbxObject) bool {
		return isa(isaGroup)(obj) && obj["name"] == resourcesGroupName
	})
	if ok {
		return id, group, nil
	}
	project, err := p.project()
	if err != nil {
		return "", nil, err
	}
	mainGroupID, _ := project["mainGroup"].(string)
	mainGroup, ok := p.object(mainGroupID)
	if !ok {
		return "", nil, fmt.Errorf("%s: main group is missing", p.Path)
	}
	id = p.generateID()
	group = pbxObject{
		"isa":        isaGroup,
		"children":   []interface{}{},
		"name":       resourcesGroupName,
		"sourceTree": "<group>",
	}
	p.addObject(id, group)
	p.appendTo(mainGroupID, mainGroup, "children", id)
	return id, group, nil
}

func (p *XcodeProject) resourcesBuildPhase(targetID string) (string, pbxObject, error) {
	target, ok := p.object(targetID)
	if !ok {
		return "", nil, fmt.Errorf("%s: target %s is missing", p.Path, targetID)
	}
	for _, phaseID := range stringList(target, "buildPhases") {
		if phase, ok := p.object(phaseID); ok && isa(isaResourcesPhase)(phase) {
			return phaseID, phase, nil
		}
	}
	id := p.generateID()
	phase := pbxObject{
		"isa":                                isaResourcesPhase,
		"buildActionMask":                    defaultBuildMask,
		"files":                              []interface{}{},
		"runOnlyForDeploymentPostprocessing": "0",
	}
	p.addObject(id, phase)
	p.appendTo(targetID, target, "buildPhases", id)
	return id, phase, nil
}

// phaseHasFile reports whether a build file of phase points at refID.
func (p *XcodeProject) phaseHasFile(phase pbxObject, refID string) bool {
	for _, buildID := range stringList(phase, "files") {
		if build, ok := p.object(buildID); ok && build["fileRef"] == refID {
			return true
		}
	}
	return false
}

func lastKnownFileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".plist":
		return "text.plist.xml"
	case ".json":
		return "text.json"
	}
	return "file"
}

// sourcePath expresses file relative to the directory containing the .xcodeproj, which
// Xcode calls SOURCE_ROOT.
func (p *XcodeProject) sourcePath(file string) (string, string) {
	sourceRoot := filepath.Dir(filepath.Dir(p.Path))
	absFile, err1 := filepath.Abs(file)
	absRoot, err2 := filepath.Abs(sourceRoot)
	if err1 == nil && err2 == nil {
		if rel, err := filepath.Rel(absRoot, absFile); err == nil {
			return filepath.ToSlash(rel), "SOURCE_ROOT"
		}
	}
	return filepath.ToSlash(file), "<absolute>"
}

// AddResourceFile registers file as a resource of targetID: a file reference in the
// Resources group plus a build file in the target's resources build phase. An earlier
// reference with the same file name is pointed at the new file instead of adding a
// duplicate. It reports whether the project changed.
func (p *XcodeProject) AddResourceFile(file, targetID string) (bool, error) {
	phaseID, phase, err := p.resourcesBuildPhase(targetID)
	if err != nil {
		return false, err
	}
	refPath, sourceTree := p.sourcePath(file)
	name := filepath.Base(file)
	changed := false
	refID, ok := p.FileReference(refPath)
	if !ok {
		var ref pbxObject
		refID, ref, ok = p.findObject(func(obj pbxObject) bool {
			return isa(isaFileReference)(obj) && filepath.Base(fmt.Sprint(obj["path"])) == name
		})
		if ok {
			ref["path"] = refPath
			ref["sourceTree"] = sourceTree
			ref["name"] = name
			if !p.isNew(refID) {
				p.rewritten[refID] = true
			}
		} else {
			groupID, group, err := p.resourcesGroup()
			if err != nil {
				return false, err
			}
			refID = p.generateID()
			p.addObject(refID, pbxObject{
				"isa":               isaFileReference,
				"lastKnownFileType": lastKnownFileType(file),
				"name":              name,
				"path":              refPath,
				"sourceTree":        sourceTree,
			})
			p.appendTo(groupID, group, "children", refID)
		}
		changed = true
	}
	if p.phaseHasFile(phase, refID) {
		return changed, nil
	}
	buildID := p.generateID()
	p.addObject(buildID, pbxObject{
		"isa":     isaBuildFile,
		"fileRef": refID,
	})
	p.appendTo(phaseID, phase, "files", buildID)
	return true, nil
}

// ResourceFiles lists the paths of all files in the resources build phase of targetID.
func (p *XcodeProject) ResourceFiles(targetID string) []string {
	target, ok := p.object(targetID)
	if !ok {
		return nil
	}
	var res []string
	for _, phaseID := range stringList(target, "buildPhases") {
		phase, ok := p.object(phaseID)
		if !ok || !isa(isaResourcesPhase)(phase) {
			continue
		}
		for _, buildID := range stringList(phase, "files") {
			build, ok := p.object(buildID)
			if !ok {
				continue
			}
			if ref, ok := p.object(fmt.Sprint(build["fileRef"])); ok {
				res = append(res, fmt.Sprint(ref["path"]))
			}
		}
	}
	return res
}

// Bytes returns the project file with all changes applied.
func (p *XcodeProject) Bytes() ([]byte, error) {
	edits, err := p.edits()
	if err != nil {
		return nil, err
	}
	return applyEdits(p.raw, edits), nil
}

// Save replaces the project file in one step, a crash leaves the previous project intact.
func (p *XcodeProject) Save() error {
	cont, err := p.Bytes()
	if err != nil {
		return err
	}
	return common.WriteFileAtomic(p.Path, cont)
}
