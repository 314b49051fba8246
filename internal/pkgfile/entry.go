// Package pkgfile assembles the outer PKG container: header, entry table,
// metadata entries, licenses, PlayGo chunk hashes and the digest cascade,
// with the PFS images embedded at computed offsets.
package pkgfile

import (
	"sort"

	"github.com/orbistools/pkgforge/internal/utils/binutil"
)

// EntryID identifies one PKG entry.
type EntryID uint32

const (
	EntryIDDigests        EntryID = 0x0001
	EntryIDEntryKeys      EntryID = 0x0010
	EntryIDImageKey       EntryID = 0x0020
	EntryIDGeneralDigests EntryID = 0x0080
	EntryIDMetas          EntryID = 0x0100
	EntryIDEntryNames     EntryID = 0x0200
	EntryIDLicenseDat     EntryID = 0x0400
	EntryIDLicenseInfo    EntryID = 0x0401
	EntryIDNpTitleDat     EntryID = 0x0402
	EntryIDNpBindDat      EntryID = 0x0403
	EntryIDPsReservedDat  EntryID = 0x0409
	EntryIDParamSfo       EntryID = 0x1000
	EntryIDPlaygoChunkDat EntryID = 0x1001
	EntryIDPlaygoChunkSha EntryID = 0x1002
	EntryIDPlaygoManifest EntryID = 0x1003
	EntryIDPronunciation  EntryID = 0x1004
	EntryIDPronunciationS EntryID = 0x1005
	EntryIDPic1Png        EntryID = 0x1006
	EntryIDPubtoolinfoDat EntryID = 0x1007
	EntryIDAppPlaygoDat   EntryID = 0x1008
	EntryIDAppPlaygoSha   EntryID = 0x1009
	EntryIDAppPlaygoXml   EntryID = 0x100A
	EntryIDTrophy00       EntryID = 0x1100
	EntryIDIcon0Png       EntryID = 0x1200
	EntryIDPic0Png        EntryID = 0x1220
	EntryIDSnd0At9        EntryID = 0x1240
	EntryIDChangeinfoXml  EntryID = 0x1260
	EntryIDIcon0Dds       EntryID = 0x1280
	EntryIDShareparamJson EntryID = 0x1400
	EntryIDSaveDataPng    EntryID = 0x1402
)

// nameToID maps recognized /sce_sys file names to their entry ids. A staged
// file whose sce_sys-relative path appears here becomes a PKG entry instead
// of a PFS file.
var nameToID = map[string]EntryID{
	"param.sfo":               EntryIDParamSfo,
	"playgo-chunk.dat":        EntryIDPlaygoChunkDat,
	"playgo-chunk.sha":        EntryIDPlaygoChunkSha,
	"playgo-manifest.xml":     EntryIDPlaygoManifest,
	"pronunciation.xml":       EntryIDPronunciation,
	"pronunciation.sig":       EntryIDPronunciationS,
	"pic1.png":                EntryIDPic1Png,
	"pubtoolinfo.dat":         EntryIDPubtoolinfoDat,
	"app/playgo-chunk.dat":    EntryIDAppPlaygoDat,
	"app/playgo-chunk.sha":    EntryIDAppPlaygoSha,
	"app/playgo-manifest.xml": EntryIDAppPlaygoXml,
	"trophy/trophy00.trp":     EntryIDTrophy00,
	"icon0.png":               EntryIDIcon0Png,
	"icon0.dds":               EntryIDIcon0Dds,
	"pic0.png":                EntryIDPic0Png,
	"snd0.at9":                EntryIDSnd0At9,
	"changeinfo/changeinfo.xml": EntryIDChangeinfoXml,
	"nptitle.dat":             EntryIDNpTitleDat,
	"npbind.dat":              EntryIDNpBindDat,
	"shareparam.json":         EntryIDShareparamJson,
	"save_data.png":           EntryIDSaveDataPng,
}

// canonicalOrder ranks the extra /sce_sys entries. Names not listed sort
// with key 999, after every known one.
var canonicalOrder = map[string]int{
	"nptitle.dat":               1,
	"npbind.dat":                2,
	"pic1.png":                  3,
	"pic0.png":                  4,
	"icon0.png":                 5,
	"icon0.dds":                 6,
	"snd0.at9":                  7,
	"changeinfo/changeinfo.xml": 8,
	"trophy/trophy00.trp":       9,
	"shareparam.json":           10,
	"save_data.png":             11,
	"pronunciation.xml":         12,
	"pronunciation.sig":         13,
	"pubtoolinfo.dat":           14,
}

const unknownNameOrder = 999

// sortSceSysNames orders extra entry names by the canonical list.
func sortSceSysNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		oi, ok := canonicalOrder[names[i]]
		if !ok {
			oi = unknownNameOrder
		}
		oj, ok := canonicalOrder[names[j]]
		if !ok {
			oj = unknownNameOrder
		}
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
}

// RecognizedSceSysName reports whether a staging-relative path is a known
// PKG entry file under sce_sys/.
func RecognizedSceSysName(rel string) bool {
	const prefix = "sce_sys/"
	if len(rel) <= len(prefix) || rel[:len(prefix)] != prefix {
		return false
	}
	_, ok := nameToID[rel[len(prefix):]]
	return ok
}

// metaFlags returns the two fixed flag words of an entry: the encryption
// bit plus key index for entries the console decrypts with a derived key,
// and the cache bits for the header-verified system entries.
func metaFlags(id EntryID) (flags1, flags2 uint32) {
	switch id {
	case EntryIDEntryKeys:
		return 0x40000000, 0
	case EntryIDImageKey:
		return 0xE0000000, 0x3000
	case EntryIDGeneralDigests:
		return 0x60000000, 0
	case EntryIDMetas:
		return 0x60000000, 0
	case EntryIDDigests:
		return 0x40000000, 0
	case EntryIDEntryNames:
		return 0x40000000, 0
	case EntryIDLicenseDat, EntryIDLicenseInfo:
		return 0x80000000, 0x3000
	default:
		return 0, 0
	}
}

// MetaEntry is one 32-byte record of the Metas table.
type MetaEntry struct {
	ID              EntryID
	NameTableOffset uint32
	Flags1          uint32
	Flags2          uint32
	DataOffset      uint32
	DataSize        uint32
}

const metaEntrySize = 32

// Encode serializes the big-endian record.
func (m *MetaEntry) Encode() ([]byte, error) {
	w := binutil.NewBEWriter()
	w.Put(uint32(m.ID))
	w.Put(m.NameTableOffset)
	w.Put(m.Flags1)
	w.Put(m.Flags2)
	w.Put(m.DataOffset)
	w.Put(m.DataSize)
	w.PadTo(metaEntrySize)
	return w.Bytes()
}

// Entry is one PKG entry: its meta record plus the file data.
type Entry struct {
	Meta MetaEntry
	Name string // sce_sys name, "" for system entries
	Data []byte
}

// ID returns the entry id.
func (e *Entry) ID() EntryID {
	return e.Meta.ID
}
