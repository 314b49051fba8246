package pfs

import (
	"fmt"

	"github.com/orbistools/pkgforge/internal/utils/errors"
)

// BlockSigInfo is one planned signature: the block it covers, where the
// HMAC goes in the image, and how many bytes of the block are signed.
type BlockSigInfo struct {
	Block     int64
	SigOffset int64
	Size      int32
}

// layout is the block plan of one image. Data-block signatures can be
// computed in parallel; final signatures cover indirect and metadata blocks
// whose contents depend on the data signatures, so they run serially after.
type layout struct {
	dataSigs  []BlockSigInfo
	finalSigs []BlockSigInfo

	ndblock          int64
	dinodeBlockCount int64
	emptyBlock       int64 // -1 when the image has no plaintext hole
	superrootBlock   int64
}

// inodeImageOffset returns the absolute image offset of inode idx.
func inodeImageOffset(idx int, signed bool) int64 {
	per := InodesPerBlock(signed)
	sz := int64(DinodeSizeOf(signed))
	return BlockSize*int64(1+idx/per) + int64(idx%per)*sz
}

// calculateDataBlockLayout walks the image front to back accumulating
// Ndblock: header, inode blocks, super-root dirents, path table, the empty
// block, the reserved indirect pool, then every node's data blocks. Inode
// pointer tables are filled in as blocks are assigned.
//
// b.allNodes must hold the nodes in their final on-disk order; the
// super-root and path table are handled out of band before it is walked.
func (b *Builder) calculateDataBlockLayout() (*layout, error) {
	signed := b.props.Signed
	l := &layout{emptyBlock: -1}

	// Block 0: the header. Its signed span is fixed and enqueued first.
	if signed {
		l.finalSigs = append(l.finalSigs, BlockSigInfo{Block: 0, SigOffset: HeaderSignedOffset, Size: HeaderSignedSize})
	}
	l.ndblock = 1

	// Inode blocks, addressed by the header's embedded dinode.
	inodeCount := len(b.allInodes)
	inodeBytes := int64(inodeCount) * int64(DinodeSizeOf(signed))
	l.dinodeBlockCount = (inodeBytes + BlockSize - 1) / BlockSize
	if l.dinodeBlockCount > NDirect {
		return nil, fmt.Errorf("%w: %d inode blocks exceed the direct table", errors.ErrLayoutOverflow, l.dinodeBlockCount)
	}
	ibs := b.header.InodeBlockSig
	for i := int64(0); i < l.dinodeBlockCount; i++ {
		if signed {
			// Slots 0..K-1 receive the block numbers 1..K.
			ibs.Direct[i] = int32(1 + i)
			l.finalSigs = append(l.finalSigs, BlockSigInfo{
				Block:     l.ndblock,
				SigOffset: headerInodeSigOffset + SigSlotOffset(int(i)),
				Size:      BlockSize,
			})
		} else if i == 0 {
			ibs.Direct[0] = int32(l.ndblock)
		}
		l.ndblock++
	}
	ibs.Blocks = uint32(l.dinodeBlockCount)
	ibs.Size = l.dinodeBlockCount * BlockSize

	// Super-root dirents occupy the block after the inode area. They are
	// metadata, so their signature joins the serial pool.
	l.superrootBlock = l.ndblock
	sr := b.superroot.Ino
	sr.Direct[0] = int32(l.ndblock)
	sr.Blocks = 1
	if signed {
		l.finalSigs = append(l.finalSigs, BlockSigInfo{
			Block:     l.ndblock,
			SigOffset: inodeImageOffset(int(sr.Number), signed) + SigSlotOffset(0),
			Size:      BlockSize,
		})
	}
	l.ndblock++

	// Flat path table blocks fill the direct slots of inode 1.
	fptIno := b.fptNode.Ino
	fptBlocks := DataBlocks(b.fptNode.Size)
	if fptBlocks > NDirect {
		return nil, fmt.Errorf("%w: path table needs %d blocks", errors.ErrLayoutOverflow, fptBlocks)
	}
	for slot := int64(0); slot < fptBlocks; slot++ {
		fptIno.Direct[slot] = int32(l.ndblock)
		if signed {
			l.finalSigs = append(l.finalSigs, BlockSigInfo{
				Block:     l.ndblock,
				SigOffset: inodeImageOffset(int(fptIno.Number), signed) + SigSlotOffset(int(slot)),
				Size:      BlockSize,
			})
		}
		l.ndblock++
	}
	fptIno.Blocks = uint32(fptBlocks)

	// The empty block: a hole the XTS sweep leaves plaintext. Unsigned
	// images only carry it when no collision resolver takes the slot.
	if signed || b.crNode == nil {
		l.emptyBlock = l.ndblock
		l.ndblock++
	}

	// Reserve the indirect pool, then hand out data blocks.
	ibStart := l.ndblock
	for _, n := range b.allNodes {
		l.ndblock += IndirectBlocksNeeded(n.Size)
	}

	for _, n := range b.allNodes {
		var err error
		ibStart, err = b.layoutNode(l, n, ibStart, signed)
		if err != nil {
			return nil, err
		}
	}

	if l.ndblock < b.props.MinBlocks {
		l.ndblock = b.props.MinBlocks
	}
	return l, nil
}

// layoutNode assigns data blocks to one node, planning a signature for each
// in signed mode. Files wider than the direct table consume indirect blocks
// from the reserved pool starting at ibStart; the updated pool cursor is
// returned.
func (b *Builder) layoutNode(l *layout, n *FSNode, ibStart int64, signed bool) (int64, error) {
	ino := n.Ino
	size := n.Size
	if n.Compress {
		size = n.SizeCompressed
	}
	blocks := DataBlocks(size)
	ino.Blocks = uint32(blocks)
	if blocks == 0 {
		return ibStart, nil
	}
	inoOff := inodeImageOffset(int(ino.Number), signed)

	direct := blocks
	if direct > NDirect {
		direct = NDirect
	}
	for i := int64(0); i < direct; i++ {
		ino.Direct[i] = int32(l.ndblock)
		if signed {
			l.dataSigs = append(l.dataSigs, BlockSigInfo{
				Block:     l.ndblock,
				SigOffset: inoOff + SigSlotOffset(int(i)),
				Size:      BlockSize,
			})
		}
		l.ndblock++
	}
	if blocks <= NDirect {
		return ibStart, nil
	}

	perBlock := int64(SigsPerBlock)
	if !signed {
		perBlock = PtrsPerBlock
	}

	// Single-indirect block.
	ib0 := ibStart
	ibStart++
	ino.Indirect[0] = int32(ib0)
	if signed {
		l.finalSigs = append(l.finalSigs, BlockSigInfo{
			Block:     ib0,
			SigOffset: inoOff + SigSlotOffset(NDirect),
			Size:      BlockSize,
		})
	}
	rest := blocks - NDirect
	first := rest
	if first > perBlock {
		first = perBlock
	}
	for j := int64(0); j < first; j++ {
		b.indirectPtrs = append(b.indirectPtrs, indirectPtr{block: ib0, slot: j, value: l.ndblock})
		if signed {
			l.dataSigs = append(l.dataSigs, BlockSigInfo{
				Block:     l.ndblock,
				SigOffset: ib0*BlockSize + j*SigEntrySize,
				Size:      BlockSize,
			})
		}
		l.ndblock++
	}
	rest -= first
	if rest == 0 {
		return ibStart, nil
	}

	// Double-indirect block plus its second-level children.
	ib1 := ibStart
	ibStart++
	ino.Indirect[1] = int32(ib1)
	if signed {
		l.finalSigs = append(l.finalSigs, BlockSigInfo{
			Block:     ib1,
			SigOffset: inoOff + SigSlotOffset(NDirect + 1),
			Size:      BlockSize,
		})
	}
	secondLevel := (rest + perBlock - 1) / perBlock
	if secondLevel > perBlock {
		return 0, fmt.Errorf("%w: %d blocks exceed double indirection", errors.ErrLayoutOverflow, blocks)
	}
	for s := int64(0); s < secondLevel; s++ {
		ib2 := ibStart
		ibStart++
		b.indirectPtrs = append(b.indirectPtrs, indirectPtr{block: ib1, slot: s, value: ib2})
		if signed {
			l.finalSigs = append(l.finalSigs, BlockSigInfo{
				Block:     ib2,
				SigOffset: ib1*BlockSize + s*SigEntrySize,
				Size:      BlockSize,
			})
		}
		count := rest
		if count > perBlock {
			count = perBlock
		}
		for j := int64(0); j < count; j++ {
			b.indirectPtrs = append(b.indirectPtrs, indirectPtr{block: ib2, slot: j, value: l.ndblock})
			if signed {
				l.dataSigs = append(l.dataSigs, BlockSigInfo{
					Block:     l.ndblock,
					SigOffset: ib2*BlockSize + j*SigEntrySize,
					Size:      BlockSize,
				})
			}
			l.ndblock++
		}
		rest -= count
	}
	return ibStart, nil
}

// indirectPtr records a block pointer that lives in an indirect block. In
// signed images the pointer shares its 36-byte slot with the signature and
// is written at slot offset +32; unsigned images pack bare 4-byte pointers.
type indirectPtr struct {
	block int64
	slot  int64
	value int64
}
