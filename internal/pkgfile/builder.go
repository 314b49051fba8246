package pkgfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/orbistools/pkgforge/internal/pfs"
	"github.com/orbistools/pkgforge/internal/project"
	"github.com/orbistools/pkgforge/internal/sfo"
	"github.com/orbistools/pkgforge/internal/utils/cryptoutil"
	"github.com/orbistools/pkgforge/internal/utils/errors"
	"github.com/orbistools/pkgforge/internal/utils/fsutil"
)

// Event is one progress notification: a status message or a percentage.
type Event interface{ isEvent() }

// Message is a textual status event.
type Message string

func (Message) isEvent() {}

// Progress is a completion percentage event.
type Progress int

func (Progress) isEvent() {}

// LogFunc receives build events. It may be nil.
type LogFunc func(Event)

func (f LogFunc) emit(e Event) {
	if f != nil {
		f(e)
	}
}

// Pkg describes a completed package.
type Pkg struct {
	Header  *Header
	Entries []*Entry
}

// entry lookup helpers on the completed descriptor.
func (p *Pkg) Entry(id EntryID) *Entry {
	for _, e := range p.Entries {
		if e.Meta.ID == id {
			return e
		}
	}
	return nil
}

// Builder drives a full package build from a validated project.
type Builder struct {
	project     *project.PkgProject
	contentType ContentType
	ekpfs       []byte
}

// NewBuilder validates the project and derives EKPFS. The key is derived
// for AL packages too: they carry no PFS image, but their ImageKey entry is
// still built from it.
func NewBuilder(p *project.PkgProject) (*Builder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ct, err := ContentTypeFor(p.VolumeType)
	if err != nil {
		return nil, err
	}
	ekpfs := p.Pfs.Ekpfs
	if len(ekpfs) == 0 {
		ekpfs, err = cryptoutil.ComputeKeys(p.ContentID, p.Passcode, cryptoutil.KeyIndexEkpfs)
		if err != nil {
			return nil, err
		}
	}
	return &Builder{project: p, contentType: ct, ekpfs: ekpfs}, nil
}

// buildPlan carries everything prepared before the first byte is written.
type buildPlan struct {
	header            *Header
	entries           []*Entry
	outerPfs          *pfs.Builder
	totalSize         int64
	chunkShaAllocated uint32
}

// Write builds the package into a memory-mapped file at path with bounded
// parallel signing, encryption and chunk hashing.
func (b *Builder) Write(path string, log LogFunc) (*Pkg, error) {
	plan, err := b.prepare(log)
	if err != nil {
		return nil, err
	}
	m, err := fsutil.CreateMapped(path, plan.totalSize)
	if err != nil {
		return nil, err
	}
	pkg, err := b.finalize(plan, m.Bytes(), pfs.DefaultWorkers, log)
	if err != nil {
		m.Close()
		return nil, err
	}
	if err := m.Close(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// WriteTo builds the package into a stream. The image is staged in memory
// and written out in one pass; no parallelism is used.
func (b *Builder) WriteTo(w io.Writer, log LogFunc) (*Pkg, error) {
	plan, err := b.prepare(log)
	if err != nil {
		return nil, err
	}
	file := make([]byte, plan.totalSize)
	pkg, err := b.finalize(plan, file, 1, log)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(file); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrIoFailure, err)
	}
	return pkg, nil
}

// prepare runs every phase that precedes output writing: the inner image,
// its compression, the outer layout, entry assembly and the header.
func (b *Builder) prepare(log LogFunc) (*buildPlan, error) {
	p := b.project

	sceSys, err := b.readSceSysFiles()
	if err != nil {
		return nil, err
	}
	rawSfo, ok := sceSys["param.sfo"]
	if !ok {
		return nil, fmt.Errorf("%w: sce_sys/param.sfo", errors.ErrMissingRequiredFile)
	}
	paramSfo, err := sfo.Parse(rawSfo)
	if err != nil {
		return nil, err
	}

	plan := &buildPlan{}
	var pfsImageSize uint64
	if b.contentType != ContentTypeAL {
		log.emit(Message("building inner filesystem image"))
		innerTree, err := pfs.BuildTree(p.RootDir, RecognizedSceSysName)
		if err != nil {
			return nil, err
		}
		innerBuilder, err := pfs.NewBuilder(pfs.Properties{
			BlockSize: p.Pfs.BlockSize,
			MinBlocks: p.Pfs.MinBlocks,
			FileTime:  p.Pfs.FileTime,
		}, innerTree)
		if err != nil {
			return nil, err
		}
		innerImage := make([]byte, innerBuilder.ImageSize())
		if err := innerBuilder.Build(innerImage, 1); err != nil {
			return nil, err
		}
		log.emit(Progress(15))

		log.emit(Message("compressing inner image"))
		pfsc, err := pfs.CompressImage(innerImage)
		if err != nil {
			return nil, err
		}
		log.emit(Progress(40))

		outerTree := &pfs.Tree{}
		outerTree.AddDir(-1, "uroot")
		imgIdx := outerTree.AddFile(0, "pfs_image.dat", int64(len(innerImage)), func(w io.Writer) error {
			_, err := w.Write(pfsc)
			return err
		})
		img := outerTree.Nodes[imgIdx]
		img.Compress = true
		img.SizeCompressed = int64(len(pfsc))

		plan.outerPfs, err = pfs.NewBuilder(pfs.Properties{
			Signed:    p.Pfs.Sign,
			Encrypted: p.Pfs.Encrypt,
			NewCrypt:  p.Pfs.NewCrypt,
			BlockSize: p.Pfs.BlockSize,
			Seed:      p.Pfs.Seed,
			MinBlocks: p.Pfs.MinBlocks,
			Ekpfs:     b.ekpfs,
			FileTime:  p.Pfs.FileTime,
		}, outerTree)
		if err != nil {
			return nil, err
		}
		pfsImageSize = uint64(plan.outerPfs.ImageSize())
	}

	// Entry layout and the package size refine each other: ChunkSha is
	// sized from the package size, which depends on the body, which holds
	// ChunkSha. Two rounds reach the fixed point for every practical
	// layout; a final growth past the allocation is the known warn-only
	// anomaly handled in finalize.
	packageSize := uint64(BodyOffset+InitialBodySize) + pfsImageSize
	plan.chunkShaAllocated = chunkShaSize(packageSize)
	var entries []*Entry
	var bodySize uint64
	for i := 0; i < 2; i++ {
		sfoBytes, err := b.augmentParamSfo(paramSfo, packageSize, pfsImageSize > 0)
		if err != nil {
			return nil, err
		}
		entries, bodySize, err = b.layoutEntries(sfoBytes, sceSys, pfsImageSize, plan.chunkShaAllocated)
		if err != nil {
			return nil, err
		}
		packageSize = uint64(BodyOffset) + bodySize + pfsImageSize
		if i == 0 {
			plan.chunkShaAllocated = chunkShaSize(packageSize)
		}
	}
	plan.entries = entries

	h := &Header{
		Flags:        0x80000000,
		EntryCount:   uint32(len(entries)),
		ScEntryCount: scEntryCount,
		BodyOffset:   BodyOffset,
		BodySize:     bodySize,
		DrmType:      drmTypePS4,
		ContentType:  b.contentType,
		ContentFlags: contentFlagsFor(p.VolumeType),
		PackageSize:  packageSize,
	}
	copy(h.ContentID[:], p.ContentID)
	h.VersionDate = versionDate(b.creationTime())
	for _, e := range entries {
		switch e.Meta.ID {
		case EntryIDMetas:
			h.EntryTableOffset = e.Meta.DataOffset
		case EntryIDEntryKeys:
			h.MainEntDataSize = mainEntDataSize(entries)
		}
	}
	if b.contentType != ContentTypeAL {
		h.PfsImageCount = 1
		h.PfsFlags = PfsFlagsOldCrypt
		if p.Pfs.NewCrypt {
			h.PfsFlags = PfsFlagsNewCrypt
		}
		h.PfsImageOffset = uint64(BodyOffset) + bodySize
		h.PfsImageSize = pfsImageSize
		h.MountImageSize = packageSize
		h.PfsSignedSize = PfsSignedSize
		h.PfsCacheSize = PfsCacheSize
	}
	plan.header = h
	plan.totalSize = int64(packageSize)
	return plan, nil
}

const scEntryCount = 5

// mainEntDataSize measures the contiguous span of the five SC entries.
func mainEntDataSize(entries []*Entry) uint32 {
	var first, last *Entry
	for _, e := range entries {
		if e.Meta.ID == EntryIDEntryKeys {
			first = e
		}
		if e.Meta.ID == EntryIDDigests {
			last = e
		}
	}
	if first == nil || last == nil {
		return 0
	}
	return last.Meta.DataOffset + last.Meta.DataSize - first.Meta.DataOffset
}

func contentFlagsFor(v project.VolumeType) uint32 {
	switch v {
	case project.VolumePS4Patch, project.VolumePS4Remaster:
		return 0x80000000 | 0x00100000
	default:
		return 0x80000000
	}
}

func (b *Builder) creationTime() time.Time {
	if !b.project.CreationDate.IsZero() {
		return b.project.CreationDate
	}
	if !b.project.Pfs.FileTime.IsZero() {
		return b.project.Pfs.FileTime
	}
	return time.Now()
}

func versionDate(t time.Time) uint32 {
	return uint32(t.Year())*10000 + uint32(t.Month())*100 + uint32(t.Day())
}

// readSceSysFiles loads every recognized entry file under sce_sys/.
func (b *Builder) readSceSysFiles() (map[string][]byte, error) {
	out := map[string][]byte{}
	if b.project.RootDir == "" {
		return out, nil
	}
	dir := filepath.Join(b.project.RootDir, "sce_sys")
	if !fsutil.DirExists(dir) {
		return out, nil
	}
	err := fsutil.WalkDir(dir, func(rel string, entry fsutil.DirEntry) error {
		if entry.IsDir {
			return nil
		}
		if _, ok := nameToID[rel]; !ok {
			return nil
		}
		data, err := os.ReadFile(entry.Path)
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrFileReadError, err)
		}
		out[rel] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// augmentParamSfo rewrites the publishing-tool fields: creation date and
// time, the image layout sizes when a PFS is present, and the tool version.
func (b *Builder) augmentParamSfo(f *sfo.File, packageSize uint64, hasPfs bool) ([]byte, error) {
	t := b.creationTime()
	pubtool := "c_date=" + t.Format("20060102")
	if b.project.UseCreationTime {
		pubtool += ",c_time=" + t.Format("150405")
	}
	if hasPfs {
		const mib = 1 << 20
		pubtool += fmt.Sprintf(",img0_l0_size=%d,img0_l1_size=0,img0_sc_ksize=512,img0_pc_ksize=832",
			(packageSize+mib-1)/mib)
	}
	f.SetString("PUBTOOLINFO", pubtool)
	f.SetInt("PUBTOOLVER", 0x02890000)
	return f.Serialize()
}

// layoutEntries assembles the entry list in canonical order and assigns
// 16-byte-aligned data offsets. Metas and Digests sizes are overwritten to
// 32 bytes per entry once the count is known.
func (b *Builder) layoutEntries(sfoBytes []byte, sceSys map[string][]byte, pfsImageSize uint64, chunkShaAlloc uint32) ([]*Entry, uint64, error) {
	p := b.project
	var entries []*Entry
	add := func(id EntryID, name string, data []byte, size uint32) *Entry {
		if data != nil {
			size = uint32(len(data))
		}
		e := &Entry{Meta: MetaEntry{ID: id, DataSize: size}, Name: name, Data: data}
		e.Meta.Flags1, e.Meta.Flags2 = metaFlags(id)
		entries = append(entries, e)
		return e
	}

	entryKeys, err := buildEntryKeys(p.ContentID, p.Passcode)
	if err != nil {
		return nil, 0, err
	}
	imageKey, err := buildImageKey(b.ekpfs)
	if err != nil {
		return nil, 0, err
	}
	add(EntryIDEntryKeys, "", entryKeys, 0)
	add(EntryIDImageKey, "", imageKey, 0)
	add(EntryIDGeneralDigests, "", make([]byte, generalDigestsSize), 0)
	add(EntryIDMetas, "", nil, 0)   // sized below
	add(EntryIDDigests, "", nil, 0) // sized below
	names := add(EntryIDEntryNames, "", nil, 0)

	if b.contentType == ContentTypeGD {
		chunkDat := sceSys["playgo-chunk.dat"]
		if chunkDat == nil {
			chunkDat, err = buildDefaultChunkDat(pfsImageSize)
			if err != nil {
				return nil, 0, err
			}
		}
		add(EntryIDPlaygoChunkDat, "playgo-chunk.dat", chunkDat, 0)
		add(EntryIDPlaygoChunkSha, "playgo-chunk.sha", nil, chunkShaAlloc)
		manifest := sceSys["playgo-manifest.xml"]
		if manifest == nil {
			manifest = []byte(defaultManifestXML)
		}
		add(EntryIDPlaygoManifest, "playgo-manifest.xml", manifest, 0)
	}

	licDat, err := buildLicenseDat(p.ContentID, b.contentType, p.EntitlementKeyBytes())
	if err != nil {
		return nil, 0, err
	}
	licInfo, err := buildLicenseInfo(p.ContentID, b.contentType, p.EntitlementKeyBytes())
	if err != nil {
		return nil, 0, err
	}
	add(EntryIDLicenseDat, "", licDat, 0)
	add(EntryIDLicenseInfo, "", licInfo, 0)
	add(EntryIDParamSfo, "param.sfo", sfoBytes, 0)

	var extra []string
	for name := range sceSys {
		switch name {
		case "param.sfo", "playgo-chunk.dat", "playgo-chunk.sha", "playgo-manifest.xml":
			continue
		}
		extra = append(extra, name)
	}
	sortSceSysNames(extra)
	for _, name := range extra {
		add(nameToID[name], name, sceSys[name], 0)
	}

	add(EntryIDPsReservedDat, "", make([]byte, 0x2000), 0)

	// Name table: offset 0 is the empty name.
	nameBlob := []byte{0}
	for _, e := range entries {
		if e.Meta.ID >= EntryIDParamSfo && e.Name != "" {
			e.Meta.NameTableOffset = uint32(len(nameBlob))
			nameBlob = append(nameBlob, []byte(e.Name)...)
			nameBlob = append(nameBlob, 0)
		}
	}
	names.Data = nameBlob
	names.Meta.DataSize = uint32(len(nameBlob))

	count := uint32(len(entries))
	for _, e := range entries {
		if e.Meta.ID == EntryIDMetas || e.Meta.ID == EntryIDDigests {
			e.Meta.DataSize = count * metaEntrySize
		}
	}

	cursor := uint64(BodyOffset)
	for _, e := range entries {
		cursor = uint64((int64(cursor) + EntryAlign - 1) &^ (EntryAlign - 1))
		e.Meta.DataOffset = uint32(cursor)
		cursor += uint64(e.Meta.DataSize)
	}
	bodySize := cursor - BodyOffset
	if bodySize < InitialBodySize {
		bodySize = InitialBodySize
	}
	bodySize = uint64((int64(bodySize) + BodyAlign - 1) &^ (BodyAlign - 1))
	return entries, bodySize, nil
}

// finalize writes the PFS image and body into the file and runs the digest
// cascade in its load-bearing order, ending with the header signature.
func (b *Builder) finalize(plan *buildPlan, file []byte, workers int, log LogFunc) (*Pkg, error) {
	h := plan.header

	if plan.outerPfs != nil {
		log.emit(Message("writing outer filesystem image"))
		region := file[h.PfsImageOffset : h.PfsImageOffset+h.PfsImageSize]
		if err := plan.outerPfs.Build(region, workers); err != nil {
			return nil, err
		}
		log.emit(Progress(70))

		copy(h.PfsSignedDigest[:], cryptoutil.Sha256(region[:PfsSignedSize]))
		copy(h.PfsImageDigest[:], cryptoutil.Sha256(region))
	}

	// PlayGo chunk hashes cover the image area and must precede the body
	// write, since the serialized table is part of the body.
	if e := findEntry(plan.entries, EntryIDPlaygoChunkSha); e != nil {
		log.emit(Message("hashing playgo chunks"))
		want := chunkShaSize(h.PackageSize)
		if want > plan.chunkShaAllocated {
			log.emit(Message(fmt.Sprintf(
				"warning: chunk hash table needs %d bytes but %d are allocated; table truncated",
				want, plan.chunkShaAllocated)))
		} else {
			e.Meta.DataSize = want
		}
		e.Data = make([]byte, e.Meta.DataSize)
		startChunk := int(h.PfsImageOffset / playgoChunkSize)
		if err := computeChunkSha(file[:h.PackageSize], e.Data, startChunk, workers); err != nil {
			return nil, err
		}
		log.emit(Progress(80))
	}

	if e := findEntry(plan.entries, EntryIDGeneralDigests); e != nil {
		g := newGeneralDigests()
		var pfsDigest []byte
		if plan.outerPfs != nil {
			pfsDigest = h.PfsImageDigest[:]
		}
		sfoEntry := findEntry(plan.entries, EntryIDParamSfo)
		g.fill(b.project.ContentID, sfoEntry.Data, b.majorParams(sfoEntry.Data), pfsDigest)
		e.Data = g.data
	}

	log.emit(Message("writing package body"))
	if err := writeBody(file, plan.entries); err != nil {
		return nil, err
	}

	// Entry digests, then the digests over them.
	digests := findEntry(plan.entries, EntryIDDigests)
	for i, e := range plan.entries {
		if i == 0 {
			continue
		}
		sum := cryptoutil.Sha256(file[e.Meta.DataOffset : e.Meta.DataOffset+e.Meta.DataSize])
		copy(digests.Data[i*32:(i+1)*32], sum)
		copy(file[int(digests.Meta.DataOffset)+i*32:], sum)
	}
	copy(h.BodyDigest[:], cryptoutil.Sha256(file[h.BodyOffset:h.BodyOffset+h.BodySize]))
	copy(h.DigestTableHash[:], cryptoutil.Sha256(digests.Data))

	entryKeys := findEntry(plan.entries, EntryIDEntryKeys)
	scSpan := file[entryKeys.Meta.DataOffset : digests.Meta.DataOffset+digests.Meta.DataSize]
	if uint32(len(scSpan)) != h.MainEntDataSize {
		return nil, fmt.Errorf("%w: sc entries span %d, header says %d",
			errors.ErrSizeMismatch, len(scSpan), h.MainEntDataSize)
	}
	copy(h.ScEntries1Hash[:], cryptoutil.Sha256(scSpan))
	metas := findEntry(plan.entries, EntryIDMetas)
	sc2End := metas.Meta.DataOffset + scEntryCount*metaEntrySize
	copy(h.ScEntries2Hash[:], cryptoutil.Sha256(file[entryKeys.Meta.DataOffset:sc2End]))

	log.emit(Message("writing package header"))
	if err := h.EncodeTo(file); err != nil {
		return nil, err
	}
	copy(h.HeaderDigest[:], cryptoutil.Sha256(file[:headerDigestOff]))
	copy(file[headerDigestOff:], h.HeaderDigest[:])

	sig, err := cryptoutil.PkgSignKey.PrivateEncrypt(cryptoutil.Sha256(file[:HeaderSize]))
	if err != nil {
		return nil, err
	}
	copy(h.HeaderSignature[:], sig)
	copy(file[signatureOff:], h.HeaderSignature[:])

	return &Pkg{Header: h, Entries: plan.entries}, nil
}

// majorParams concatenates the values the major-param digest covers.
func (b *Builder) majorParams(sfoBytes []byte) []byte {
	f, err := sfo.Parse(sfoBytes)
	if err != nil {
		return nil
	}
	var out []byte
	for _, key := range []string{"APP_VER", "CATEGORY", "TITLE_ID", "VERSION"} {
		if v, ok := f.GetString(key); ok {
			out = append(out, v...)
		}
	}
	return out
}

func findEntry(entries []*Entry, id EntryID) *Entry {
	for _, e := range entries {
		if e.Meta.ID == id {
			return e
		}
	}
	return nil
}

// writeBody serializes every entry at its assigned offset. The Metas entry
// is the serialized table itself; Digests starts zeroed and is filled by
// the cascade.
func writeBody(file []byte, entries []*Entry) error {
	metas := findEntry(entries, EntryIDMetas)
	var table []byte
	for _, e := range entries {
		rec, err := e.Meta.Encode()
		if err != nil {
			return err
		}
		table = append(table, rec...)
	}
	metas.Data = table
	digests := findEntry(entries, EntryIDDigests)
	digests.Data = make([]byte, digests.Meta.DataSize)

	for _, e := range entries {
		if e.Data == nil {
			continue
		}
		if int(e.Meta.DataOffset)+len(e.Data) > len(file) {
			return fmt.Errorf("%w: entry 0x%X overruns file", errors.ErrShortWrite, uint32(e.Meta.ID))
		}
		copy(file[e.Meta.DataOffset:], e.Data)
	}
	return nil
}
